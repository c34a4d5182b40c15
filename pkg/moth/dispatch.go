package moth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/wildsense/mothctl/internal/hid"
)

// execute performs exactly one command exchange: encode, write the request
// report, block for the response report, return it raw. No retries; a
// failure here is the first and only failure of the attempt, so the cause
// stays unambiguous for the caller.
func (c *Client) execute(h *Handle, op byte, cfg *Config) ([]byte, error) {
	req, err := encodeCommand(op, cfg)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("write report",
		"op", fmt.Sprintf("0x%02X", op), "serial", h.info.Serial, "data", hexString(req))
	if err := h.dev.WriteReport(req); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrTransport, err)
	}

	resp, err := h.dev.ReadReport(c.timeout)
	if err != nil {
		if errors.Is(err, hid.ErrReadTimeout) {
			// The handle may still have the read pending; it must be
			// closed and reopened, see hid.Device.
			return nil, fmt.Errorf("%w within %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: read: %v", ErrTransport, err)
	}
	c.logger.Debug("read report", "serial", h.info.Serial, "data", hexString(resp))
	return resp, nil
}

// hexString renders a report as dash-separated hex pairs for debug logs.
func hexString(b []byte) string {
	digits := hex.EncodeToString(b)
	var builder strings.Builder
	for i, r := range digits {
		if i > 0 && i%2 == 0 {
			builder.WriteString("-")
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
