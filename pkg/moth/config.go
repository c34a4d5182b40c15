package moth

import "fmt"

// SampleRates lists the sample rates the device firmware accepts, in Hz.
var SampleRates = []uint32{8000, 16000, 32000, 48000, 96000, 192000, 250000, 384000}

// Config is the device's complete configuration record. The zero value is
// not valid; records come from GetConfig or from merging Overrides onto a
// read record.
type Config struct {
	Gain              uint8
	ClockDivider      uint8
	AcquisitionCycles uint8
	OversampleRate    uint8
	SampleRate        uint32
	SampleRateDivider uint8
	LowerFilterFreq   uint16
	HigherFilterFreq  uint16
}

// Validate checks every field against its firmware-defined domain and the
// band-pass filter invariants. It reports the first violation found and
// performs no I/O.
func (c Config) Validate() error {
	if c.Gain > 4 {
		return fmt.Errorf("gain must be 0..4, got %d", c.Gain)
	}
	if c.ClockDivider == 0 {
		return fmt.Errorf("clock divider must be positive")
	}
	if c.AcquisitionCycles == 0 {
		return fmt.Errorf("acquisition cycles must be positive")
	}
	if c.OversampleRate == 0 {
		return fmt.Errorf("oversample rate must be positive")
	}
	if !validSampleRate(c.SampleRate) {
		return fmt.Errorf("sample rate must be one of %v, got %d", SampleRates, c.SampleRate)
	}
	if c.SampleRateDivider == 0 {
		return fmt.Errorf("sample rate divider must be positive")
	}
	if c.LowerFilterFreq%100 != 0 || c.HigherFilterFreq%100 != 0 {
		return fmt.Errorf("filter frequencies must be multiples of 100, got %d/%d",
			c.LowerFilterFreq, c.HigherFilterFreq)
	}
	if c.LowerFilterFreq > c.HigherFilterFreq {
		return fmt.Errorf("lower filter frequency %d exceeds higher %d",
			c.LowerFilterFreq, c.HigherFilterFreq)
	}
	if uint32(c.HigherFilterFreq) > c.SampleRate/2 {
		return fmt.Errorf("higher filter frequency %d exceeds half the sample rate %d",
			c.HigherFilterFreq, c.SampleRate)
	}
	return nil
}

func validSampleRate(sr uint32) bool {
	for _, v := range SampleRates {
		if v == sr {
			return true
		}
	}
	return false
}

// Overrides is a sparse set of configuration changes. A nil field means
// "leave the device's current value unchanged"; the wire protocol has no
// partial write, so SetConfig resolves these against a freshly read record
// before issuing the full-record SET.
type Overrides struct {
	Gain              *uint8
	ClockDivider      *uint8
	AcquisitionCycles *uint8
	OversampleRate    *uint8
	SampleRate        *uint32
	SampleRateDivider *uint8
	LowerFilterFreq   *uint16
	HigherFilterFreq  *uint16
}

// apply merges o onto c, replacing exactly the fields present in o.
func (o Overrides) apply(c Config) Config {
	if o.Gain != nil {
		c.Gain = *o.Gain
	}
	if o.ClockDivider != nil {
		c.ClockDivider = *o.ClockDivider
	}
	if o.AcquisitionCycles != nil {
		c.AcquisitionCycles = *o.AcquisitionCycles
	}
	if o.OversampleRate != nil {
		c.OversampleRate = *o.OversampleRate
	}
	if o.SampleRate != nil {
		c.SampleRate = *o.SampleRate
	}
	if o.SampleRateDivider != nil {
		c.SampleRateDivider = *o.SampleRateDivider
	}
	if o.LowerFilterFreq != nil {
		c.LowerFilterFreq = *o.LowerFilterFreq
	}
	if o.HigherFilterFreq != nil {
		c.HigherFilterFreq = *o.HigherFilterFreq
	}
	return c
}
