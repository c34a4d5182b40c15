// Package moth speaks the AudioMoth USB HID configuration protocol:
// device discovery, the fixed-format command/response packets, and the
// temporary-versus-persisted configuration state kept by the firmware.
//
// The device holds two configurations: the active temporary one, lost on
// power cycle, and a persisted one in non-volatile memory. GetConfig and
// SetConfig act on the temporary configuration; Persist copies temporary
// to persisted; Restore copies persisted back to temporary. Both copies
// are idempotent.
package moth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wildsense/mothctl/internal/hid"
)

// DefaultTimeout bounds the wait for a response report.
const DefaultTimeout = 2 * time.Second

// Client performs configuration exchanges with attached AudioMoths. It
// holds no per-device state; every operation is a self-contained exchange
// and the device is the sole source of truth for its configuration.
//
// Operations on distinct handles may run concurrently. Operations on the
// same handle must be serialized by the caller: the report channel is a
// single duplex stream and interleaved exchanges on it are undefined.
type Client struct {
	mgr     hid.Manager
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-exchange response timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger for packet-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithManager injects the HID manager, replacing the platform one.
func WithManager(m hid.Manager) Option {
	return func(c *Client) { c.mgr = m }
}

// New returns a Client backed by the platform HID manager unless one is
// injected via WithManager.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.mgr == nil {
		mgr, err := hid.NewManager()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		c.mgr = mgr
	}
	return c, nil
}

// GetConfig reads the device's temporary configuration.
func (c *Client) GetConfig(h *Handle) (Config, error) {
	resp, err := c.execute(h, opGetConfig, nil)
	if err != nil {
		return Config{}, err
	}
	return decodeRecord(opGetConfig, resp)
}

// SetConfig applies a sparse set of overrides to the device's temporary
// configuration and returns the record the device confirms.
//
// The wire SET always carries a complete record, so SetConfig first reads
// the current configuration, merges the overrides onto it field by field,
// and validates the merged record. A merge that violates any field domain
// or the band-pass filter invariant fails with ErrValidation before the
// device is contacted a second time.
func (c *Client) SetConfig(h *Handle, o Overrides) (Config, error) {
	current, err := c.GetConfig(h)
	if err != nil {
		return Config{}, err
	}
	merged := o.apply(current)
	if err := merged.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	resp, err := c.execute(h, opSetConfig, &merged)
	if err != nil {
		return Config{}, err
	}
	return decodeRecord(opSetConfig, resp)
}

// Persist copies the device's temporary configuration into its persistent
// store.
func (c *Client) Persist(h *Handle) error {
	resp, err := c.execute(h, opPersist, nil)
	if err != nil {
		return err
	}
	return decodeAck(opPersist, resp)
}

// Restore overwrites the device's temporary configuration with the last
// persisted one.
func (c *Client) Restore(h *Handle) error {
	resp, err := c.execute(h, opRestore, nil)
	if err != nil {
		return err
	}
	return decodeAck(opRestore, resp)
}
