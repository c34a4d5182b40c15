//go:build windows

package hid

import (
	"sync"
	"time"

	gohid "github.com/sstallion/go-hid"
)

type hidapiManager struct{}

var initOnce sync.Once

func newManager() (Manager, error) {
	var err error
	initOnce.Do(func() { err = gohid.Init() })
	if err != nil {
		return nil, err
	}
	return &hidapiManager{}, nil
}

func (m *hidapiManager) List() ([]DeviceInfo, error) {
	var out []DeviceInfo
	err := gohid.Enumerate(0, 0, func(info *gohid.DeviceInfo) error {
		out = append(out, DeviceInfo{
			Path:         info.Path,
			VendorID:     info.VendorID,
			ProductID:    info.ProductID,
			Serial:       info.SerialNbr,
			Manufacturer: info.MfrStr,
			Product:      info.ProductStr,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *hidapiManager) Open(info DeviceInfo) (Device, error) {
	d, err := gohid.OpenPath(info.Path)
	if err != nil {
		return nil, err
	}
	return &hidapiDevice{d: d, info: info}, nil
}

type hidapiDevice struct {
	d    *gohid.Device
	info DeviceInfo
}

func (d *hidapiDevice) WriteReport(data []byte) error {
	// hidapi expects the report ID in the first byte; 0 for unnumbered.
	buf := make([]byte, len(data)+1)
	copy(buf[1:], data)
	_, err := d.d.Write(buf)
	return err
}

func (d *hidapiDevice) ReadReport(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, ReportSize)
	n, err := d.d.ReadWithTimeout(buf, timeout)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrReadTimeout
	}
	return buf[:n], nil
}

func (d *hidapiDevice) Info() DeviceInfo { return d.info }

func (d *hidapiDevice) Close() error { return d.d.Close() }
