package moth

import (
	"fmt"

	"github.com/wildsense/mothctl/internal/hid"
)

// Handle is one opened AudioMoth. It is valid for the duration of the
// invoking operations only; the package keeps no handle across calls.
type Handle struct {
	dev  hid.Device
	info hid.DeviceInfo
}

// Info returns the descriptor the handle was opened from.
func (h *Handle) Info() hid.DeviceInfo { return h.info }

// Close releases the underlying HID device.
func (h *Handle) Close() error { return h.dev.Close() }

// Enumerate returns the descriptors of every attached AudioMoth, in the
// platform's enumeration order.
func (c *Client) Enumerate() ([]hid.DeviceInfo, error) {
	all, err := c.mgr.List()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate: %v", ErrTransport, err)
	}
	var moths []hid.DeviceInfo
	for _, info := range all {
		if info.VendorID == VendorID && info.ProductID == ProductID {
			moths = append(moths, info)
		}
	}
	return moths, nil
}

// Find opens the attached AudioMoth with the given serial number. With an
// empty serial it opens the first AudioMoth enumerated; when several are
// attached that choice is only as deterministic as the platform's
// enumeration order, so callers needing a specific device must pass a
// serial number.
func (c *Client) Find(serial string) (*Handle, error) {
	moths, err := c.Enumerate()
	if err != nil {
		return nil, err
	}
	for _, info := range moths {
		if serial != "" && info.Serial != serial {
			continue
		}
		dev, err := c.mgr.Open(info)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrTransport, info.Path, err)
		}
		return &Handle{dev: dev, info: info}, nil
	}
	if serial != "" {
		return nil, fmt.Errorf("%w: serial %q", ErrDeviceNotFound, serial)
	}
	return nil, ErrDeviceNotFound
}
