package moth

import (
	"fmt"

	"github.com/karalabe/usb"
)

// USBDeviceInfo describes one attached USB device, HID or not.
type USBDeviceInfo struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Serial       string
	Manufacturer string
	Product      string
}

// ListUSB enumerates every attached USB device. Unlike Enumerate it is not
// limited to HID devices or to AudioMoths; it backs the CLI's bare device
// listing.
func (c *Client) ListUSB() ([]USBDeviceInfo, error) {
	infos, err := usb.Enumerate(0, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: usb enumerate: %v", ErrTransport, err)
	}
	out := make([]USBDeviceInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, usbInfo(info))
	}
	return out, nil
}

func usbInfo(info usb.DeviceInfo) USBDeviceInfo {
	return USBDeviceInfo{
		Path:         info.Path,
		VendorID:     info.VendorID,
		ProductID:    info.ProductID,
		Serial:       info.Serial,
		Manufacturer: info.Manufacturer,
		Product:      info.Product,
	}
}
