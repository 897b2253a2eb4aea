package radio

// Kind identifies one test mode.
type Kind int

const (
	KindUnmodulatedTX Kind = iota + 1
	KindModulatedTX
	KindModulatedTXDutyCycle
	KindRXSweep
	KindTXSweep
	KindRX
)

func (k Kind) String() string {
	switch k {
	case KindUnmodulatedTX:
		return "unmodulated_tx"
	case KindModulatedTX:
		return "modulated_tx"
	case KindModulatedTXDutyCycle:
		return "modulated_tx_duty_cycle"
	case KindRXSweep:
		return "rx_sweep"
	case KindTXSweep:
		return "tx_sweep"
	case KindRX:
		return "rx"
	default:
		return "unknown"
	}
}

// Descriptor is the concrete parameter set for one test run.
type Descriptor interface {
	Kind() Kind
	RadioMode() Mode
}

type UnmodulatedTX struct {
	Mode    Mode  `json:"mode"`
	TxPower int8  `json:"tx_power"`
	Channel uint8 `json:"channel"`
}

// ModulatedTX runs until cancelled unless Packets > 0, in which case the
// engine calls OnComplete once after that many packets.
type ModulatedTX struct {
	Mode       Mode   `json:"mode"`
	TxPower    int8   `json:"tx_power"`
	Channel    uint8  `json:"channel"`
	Packets    uint32 `json:"packets,omitempty"`
	OnComplete func() `json:"-"`
}

// Bounded reports whether the run terminates on its own.
func (d ModulatedTX) Bounded() bool {
	return d.Packets > 0 && d.OnComplete != nil
}

type ModulatedTXDutyCycle struct {
	Mode      Mode    `json:"mode"`
	TxPower   int8    `json:"tx_power"`
	Pattern   Pattern `json:"pattern"`
	Channel   uint8   `json:"channel"`
	DutyCycle uint8   `json:"duty_cycle"`
}

type RXSweep struct {
	Mode         Mode  `json:"mode"`
	ChannelStart uint8 `json:"channel_start"`
	ChannelEnd   uint8 `json:"channel_end"`
	DelayMS      uint8 `json:"delay_ms"`
}

type TXSweep struct {
	Mode         Mode  `json:"mode"`
	ChannelStart uint8 `json:"channel_start"`
	ChannelEnd   uint8 `json:"channel_end"`
	DelayMS      uint8 `json:"delay_ms"`
	TxPower      int8  `json:"tx_power"`
}

type RX struct {
	Mode    Mode    `json:"mode"`
	Channel uint8   `json:"channel"`
	Pattern Pattern `json:"pattern"`
}

func (UnmodulatedTX) Kind() Kind        { return KindUnmodulatedTX }
func (ModulatedTX) Kind() Kind          { return KindModulatedTX }
func (ModulatedTXDutyCycle) Kind() Kind { return KindModulatedTXDutyCycle }
func (RXSweep) Kind() Kind              { return KindRXSweep }
func (TXSweep) Kind() Kind              { return KindTXSweep }
func (RX) Kind() Kind                   { return KindRX }

func (d UnmodulatedTX) RadioMode() Mode        { return d.Mode }
func (d ModulatedTX) RadioMode() Mode          { return d.Mode }
func (d ModulatedTXDutyCycle) RadioMode() Mode { return d.Mode }
func (d RXSweep) RadioMode() Mode              { return d.Mode }
func (d TXSweep) RadioMode() Mode              { return d.Mode }
func (d RX) RadioMode() Mode                   { return d.Mode }

// BuildOptions carries start parameters that do not live in Config.
type BuildOptions struct {
	Packets    uint32
	OnComplete func()
}

// BuildDescriptor maps kind and a config snapshot to a descriptor.
// It returns nil for an unknown kind.
func BuildDescriptor(kind Kind, cfg Config, opts BuildOptions) Descriptor {
	switch kind {
	case KindUnmodulatedTX:
		return UnmodulatedTX{Mode: cfg.Mode, TxPower: cfg.TxPower, Channel: cfg.ChannelStart}
	case KindModulatedTX:
		d := ModulatedTX{Mode: cfg.Mode, TxPower: cfg.TxPower, Channel: cfg.ChannelStart}
		if opts.Packets > 0 {
			d.Packets = opts.Packets
			d.OnComplete = opts.OnComplete
		}
		return d
	case KindModulatedTXDutyCycle:
		return ModulatedTXDutyCycle{
			Mode:      cfg.Mode,
			TxPower:   cfg.TxPower,
			Pattern:   cfg.Pattern,
			Channel:   cfg.ChannelStart,
			DutyCycle: cfg.DutyCycle,
		}
	case KindRXSweep:
		return RXSweep{
			Mode:         cfg.Mode,
			ChannelStart: cfg.ChannelStart,
			ChannelEnd:   cfg.ChannelEnd,
			DelayMS:      cfg.DelayMS,
		}
	case KindTXSweep:
		return TXSweep{
			Mode:         cfg.Mode,
			ChannelStart: cfg.ChannelStart,
			ChannelEnd:   cfg.ChannelEnd,
			DelayMS:      cfg.DelayMS,
			TxPower:      cfg.TxPower,
		}
	case KindRX:
		return RX{Mode: cfg.Mode, Channel: cfg.ChannelStart, Pattern: cfg.Pattern}
	default:
		return nil
	}
}
