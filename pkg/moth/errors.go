package moth

import "errors"

// Every failure returned by this package wraps exactly one of these
// sentinels, so callers can classify with errors.Is. The package never
// retries and never substitutes defaults; the wrapped cause is the
// first and only failure of the operation.
var (
	// ErrDeviceNotFound means no attached device matched the AudioMoth
	// vendor/product signature (and serial number, if one was given).
	ErrDeviceNotFound = errors.New("moth: no matching device")

	// ErrEncoding means a command could not be represented in the wire
	// packet, typically an out-of-domain field value.
	ErrEncoding = errors.New("moth: cannot encode command")

	// ErrDecoding means a received packet had the wrong length, echoed an
	// unexpected opcode, or carried an out-of-domain field value.
	ErrDecoding = errors.New("moth: cannot decode response")

	// ErrTransport is an underlying I/O failure: disconnect, permission,
	// bus error.
	ErrTransport = errors.New("moth: transport failure")

	// ErrTimeout means the device did not respond within the bound.
	ErrTimeout = errors.New("moth: device did not respond")

	// ErrValidation means a merged configuration violated a field domain
	// or the band-pass filter invariant.
	ErrValidation = errors.New("moth: invalid configuration")
)
