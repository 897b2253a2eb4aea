package radio

import (
	"errors"
	"fmt"
	"math"
)

// Parameter bounds.
const (
	MaxChannel   = 80
	MaxDelayMS   = 99
	MaxDutyCycle = 100
)

var ErrOutOfRange = errors.New("radio: value out of range")

// Pattern selects the transmitted bit pattern.
type Pattern int32

const (
	PatternRandom   Pattern = 0
	Pattern11110000 Pattern = 1
	Pattern11001100 Pattern = 2
)

func (p Pattern) String() string {
	switch p {
	case PatternRandom:
		return "random"
	case Pattern11110000:
		return "11110000"
	case Pattern11001100:
		return "11001100"
	default:
		return fmt.Sprintf("pattern(%d)", int32(p))
	}
}

// Mode is the data-rate/modulation selector. Values are passed through to
// the engine untouched.
type Mode int32

const (
	ModeNRF1Mbit   Mode = 0
	ModeNRF2Mbit   Mode = 1
	ModeBLE1Mbit   Mode = 3
	ModeBLE2Mbit   Mode = 4
	ModeBLELR125K  Mode = 5
	ModeBLELR500K  Mode = 6
	ModeIEEE802154 Mode = 15
)

// Config holds the radio parameters consumed by the next test start.
type Config struct {
	Pattern      Pattern `json:"pattern"`
	Mode         Mode    `json:"mode"`
	TxPower      int8    `json:"tx_power"`
	ChannelStart uint8   `json:"channel_start"`
	ChannelEnd   uint8   `json:"channel_end"`
	DelayMS      uint8   `json:"delay_ms"`
	DutyCycle    uint8   `json:"duty_cycle"`
}

// DefaultConfig returns the power-on parameter set.
func DefaultConfig() Config {
	return Config{
		Pattern:      PatternRandom,
		Mode:         ModeBLE1Mbit,
		TxPower:      0,
		ChannelStart: 0,
		ChannelEnd:   MaxChannel,
		DelayMS:      10,
		DutyCycle:    50,
	}
}

// The setters below leave c untouched when they return an error.

func (c *Config) SetTxPower(v int32) error {
	if v < 0 || v > math.MaxInt8 {
		return rangeErr("tx_power", v, 0, math.MaxInt8)
	}
	c.TxPower = int8(v)
	return nil
}

func (c *Config) SetPattern(v int32) error {
	if v < 0 {
		return rangeErr("pattern", v, 0, math.MaxInt32)
	}
	c.Pattern = Pattern(v)
	return nil
}

func (c *Config) SetChannelStart(v int32) error {
	if err := checkChannel("channel_start", v); err != nil {
		return err
	}
	c.ChannelStart = uint8(v)
	return nil
}

func (c *Config) SetChannelEnd(v int32) error {
	if err := checkChannel("channel_end", v); err != nil {
		return err
	}
	c.ChannelEnd = uint8(v)
	return nil
}

func (c *Config) SetDelayMS(v int32) error {
	if v < 0 || v > MaxDelayMS {
		return rangeErr("delay_ms", v, 0, MaxDelayMS)
	}
	c.DelayMS = uint8(v)
	return nil
}

func (c *Config) SetDutyCycle(v int32) error {
	if v < 0 || v > MaxDutyCycle {
		return rangeErr("duty_cycle", v, 0, MaxDutyCycle)
	}
	c.DutyCycle = uint8(v)
	return nil
}

func (c *Config) SetMode(v int32) {
	c.Mode = Mode(v)
}

func checkChannel(name string, v int32) error {
	if v < 0 || v > MaxChannel {
		return rangeErr(name, v, 0, MaxChannel)
	}
	return nil
}

func rangeErr(name string, v, lo, hi int32) error {
	return fmt.Errorf("%w: %s=%d want %d..%d", ErrOutOfRange, name, v, lo, hi)
}
