package moth

import (
	"encoding/binary"
	"fmt"

	"github.com/wildsense/mothctl/internal/hid"
)

// VID/PID for the AudioMoth (Silicon Labs EFM32 HID interface).
const (
	VendorID  uint16 = 0x10C4
	ProductID uint16 = 0x002A
)

// Command opcodes. Byte 0 of every request carries one of these and every
// response echoes the opcode of the request it answers.
const (
	opSetConfig byte = 0x01
	opRestore   byte = 0x04
	opGetConfig byte = 0x05
	opPersist   byte = 0x06
)

// recordLen is the packed size of a Config inside a report, at offset 1.
const recordLen = 13

// encodeCommand serializes one command into a full-size request report.
// Only SET carries a record; the record is validated before any bytes are
// produced so an out-of-domain value never reaches the wire.
func encodeCommand(op byte, cfg *Config) ([]byte, error) {
	report := make([]byte, hid.ReportSize)
	report[0] = op
	if op != opSetConfig {
		return report, nil
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: set command requires a record", ErrEncoding)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	putRecord(report[1:], *cfg)
	return report, nil
}

// decodeRecord parses a GET/SET response into a Config, checking report
// length, the opcode echo, and every decoded field domain. The domain check
// guards against a malformed or firmware-incompatible device.
func decodeRecord(op byte, resp []byte) (Config, error) {
	if err := checkEcho(op, resp); err != nil {
		return Config{}, err
	}
	cfg := getRecord(resp[1:])
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return cfg, nil
}

// decodeAck checks a PERSIST/RESTORE acknowledgement. The firmware echoes
// the opcode; trailing bytes are not significant.
func decodeAck(op byte, resp []byte) error {
	return checkEcho(op, resp)
}

func checkEcho(op byte, resp []byte) error {
	if len(resp) != hid.ReportSize {
		return fmt.Errorf("%w: report is %d bytes, want %d", ErrDecoding, len(resp), hid.ReportSize)
	}
	if resp[0] != op {
		return fmt.Errorf("%w: response echoes opcode 0x%02X, want 0x%02X", ErrDecoding, resp[0], op)
	}
	return nil
}

func putRecord(b []byte, c Config) {
	_ = b[recordLen-1]
	b[0] = c.Gain
	b[1] = c.ClockDivider
	b[2] = c.AcquisitionCycles
	b[3] = c.OversampleRate
	binary.LittleEndian.PutUint32(b[4:], c.SampleRate)
	b[8] = c.SampleRateDivider
	binary.LittleEndian.PutUint16(b[9:], c.LowerFilterFreq)
	binary.LittleEndian.PutUint16(b[11:], c.HigherFilterFreq)
}

func getRecord(b []byte) Config {
	_ = b[recordLen-1]
	return Config{
		Gain:              b[0],
		ClockDivider:      b[1],
		AcquisitionCycles: b[2],
		OversampleRate:    b[3],
		SampleRate:        binary.LittleEndian.Uint32(b[4:]),
		SampleRateDivider: b[8],
		LowerFilterFreq:   binary.LittleEndian.Uint16(b[9:]),
		HigherFilterFreq:  binary.LittleEndian.Uint16(b[11:]),
	}
}
