//go:build !windows

package hid

import (
	"time"

	usbhid "rafaelmartins.com/p/usbhid"
)

type usbManager struct{}

func newManager() (Manager, error) { return &usbManager{}, nil }

func (m *usbManager) List() ([]DeviceInfo, error) {
	devs, err := usbhid.Enumerate(nil)
	if err != nil {
		return nil, err
	}
	out := make([]DeviceInfo, 0, len(devs))
	for _, d := range devs {
		out = append(out, DeviceInfo{
			Path:         d.Path(),
			VendorID:     d.VendorId(),
			ProductID:    d.ProductId(),
			Serial:       d.SerialNumber(),
			Manufacturer: d.Manufacturer(),
			Product:      d.Product(),
		})
	}
	return out, nil
}

func (m *usbManager) Open(info DeviceInfo) (Device, error) {
	d, err := usbhid.Get(func(dev *usbhid.Device) bool {
		return dev.Path() == info.Path
	}, true, false)
	if err != nil {
		return nil, err
	}
	return &usbDevice{d: d, info: info}, nil
}

type usbDevice struct {
	d    *usbhid.Device
	info DeviceInfo
}

func (d *usbDevice) WriteReport(data []byte) error {
	// The device uses unnumbered reports; report ID 0 on the wire.
	return d.d.SetOutputReport(0, data)
}

func (d *usbDevice) ReadReport(timeout time.Duration) ([]byte, error) {
	type result struct {
		buf []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		_, buf, err := d.d.GetInputReport()
		ch <- result{buf, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.buf, r.err
	case <-timer.C:
		// The goroutine stays blocked on the endpoint until the device is
		// closed, hence the no-reuse rule on Device.
		return nil, ErrReadTimeout
	}
}

func (d *usbDevice) Info() DeviceInfo { return d.info }

func (d *usbDevice) Close() error { return d.d.Close() }
