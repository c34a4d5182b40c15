// Package hid wraps a raw bidirectional HID report channel. It knows
// nothing about the AudioMoth protocol; higher layers frame and parse
// the reports it moves.
package hid

import (
	"errors"
	"time"
)

// ReportSize is the payload size of every input and output report the
// device exchanges, excluding the report ID prefix some backends require.
const ReportSize = 64

// ErrReadTimeout is returned by Device.ReadReport when no input report
// arrives within the given bound.
var ErrReadTimeout = errors.New("hid: read timed out")

// DeviceInfo describes one attached HID device.
type DeviceInfo struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Serial       string
	Manufacturer string
	Product      string
}

// Device is an opened HID device capable of report I/O.
//
// A Device whose ReadReport returned ErrReadTimeout is not safe to reuse:
// the underlying read may still be pending on the endpoint and a later
// response would interleave with the next exchange. Close it and open a
// fresh handle instead.
type Device interface {
	// WriteReport sends one output report. data must be exactly ReportSize
	// bytes; the backend prepends the report ID if its transport needs one.
	WriteReport(data []byte) error

	// ReadReport blocks for one input report, up to timeout.
	ReadReport(timeout time.Duration) ([]byte, error)

	Info() DeviceInfo
	Close() error
}

// Manager enumerates and opens HID devices.
type Manager interface {
	// List snapshots every attached HID device at call time, unfiltered.
	List() ([]DeviceInfo, error)

	// Open opens the device at info.Path.
	Open(info DeviceInfo) (Device, error)
}

// NewManager returns the OS-specific HID manager.
func NewManager() (Manager, error) {
	return newManager()
}
