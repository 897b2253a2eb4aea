package radio

import (
	"testing"

	"github.com/danmuck/radiotest/internal/testutil/testlog"
)

func TestBuildDescriptorFieldMapping(t *testing.T) {
	testlog.Start(t)

	cfg := Config{
		Pattern:      Pattern11110000,
		Mode:         ModeBLE2Mbit,
		TxPower:      4,
		ChannelStart: 10,
		ChannelEnd:   20,
		DelayMS:      30,
		DutyCycle:    75,
	}

	if d := BuildDescriptor(KindUnmodulatedTX, cfg, BuildOptions{}); d != (UnmodulatedTX{Mode: ModeBLE2Mbit, TxPower: 4, Channel: 10}) {
		t.Fatalf("unexpected unmodulated tx: %+v", d)
	}
	if d := BuildDescriptor(KindModulatedTXDutyCycle, cfg, BuildOptions{}); d != (ModulatedTXDutyCycle{Mode: ModeBLE2Mbit, TxPower: 4, Pattern: Pattern11110000, Channel: 10, DutyCycle: 75}) {
		t.Fatalf("unexpected duty cycle tx: %+v", d)
	}
	if d := BuildDescriptor(KindRXSweep, cfg, BuildOptions{}); d != (RXSweep{Mode: ModeBLE2Mbit, ChannelStart: 10, ChannelEnd: 20, DelayMS: 30}) {
		t.Fatalf("unexpected rx sweep: %+v", d)
	}
	if d := BuildDescriptor(KindTXSweep, cfg, BuildOptions{}); d != (TXSweep{Mode: ModeBLE2Mbit, ChannelStart: 10, ChannelEnd: 20, DelayMS: 30, TxPower: 4}) {
		t.Fatalf("unexpected tx sweep: %+v", d)
	}
	if d := BuildDescriptor(KindRX, cfg, BuildOptions{}); d != (RX{Mode: ModeBLE2Mbit, Channel: 10, Pattern: Pattern11110000}) {
		t.Fatalf("unexpected rx: %+v", d)
	}
}

func TestBuildDescriptorModulatedTXBound(t *testing.T) {
	testlog.Start(t)

	cfg := DefaultConfig()
	unbounded, ok := BuildDescriptor(KindModulatedTX, cfg, BuildOptions{}).(ModulatedTX)
	if !ok {
		t.Fatalf("expected ModulatedTX")
	}
	if unbounded.Bounded() {
		t.Fatalf("expected unbounded run without packet count")
	}

	called := 0
	bounded := BuildDescriptor(KindModulatedTX, cfg, BuildOptions{Packets: 5, OnComplete: func() { called++ }}).(ModulatedTX)
	if !bounded.Bounded() || bounded.Packets != 5 {
		t.Fatalf("expected bounded run of 5 packets: %+v", bounded)
	}
	bounded.OnComplete()
	if called != 1 {
		t.Fatalf("completion callback not wired")
	}
}

func TestBuildDescriptorUnknownKind(t *testing.T) {
	testlog.Start(t)

	if d := BuildDescriptor(Kind(99), DefaultConfig(), BuildOptions{}); d != nil {
		t.Fatalf("expected nil descriptor, got %+v", d)
	}
}
