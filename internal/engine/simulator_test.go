package engine

import (
	"testing"
	"time"

	"github.com/danmuck/radiotest/internal/radio"
	"github.com/danmuck/radiotest/internal/testutil/testlog"
)

func TestSimulatorBoundedRunCompletesOnce(t *testing.T) {
	testlog.Start(t)

	sim := NewSimulator(time.Millisecond)
	defer sim.Close()

	done := make(chan struct{}, 2)
	sim.Start(radio.ModulatedTX{Packets: 3, OnComplete: func() { done <- struct{}{} }})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("completion not raised")
	}
	if _, running := sim.Running(); running {
		t.Fatalf("expected engine idle after completion")
	}
	if sim.PacketsSent() != 3 {
		t.Fatalf("expected 3 packets, got %d", sim.PacketsSent())
	}
	select {
	case <-done:
		t.Fatalf("completion raised twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSimulatorCancelSuppressesCompletion(t *testing.T) {
	testlog.Start(t)

	sim := NewSimulator(50 * time.Millisecond)
	done := make(chan struct{}, 1)
	sim.Start(radio.ModulatedTX{Packets: 100, OnComplete: func() { done <- struct{}{} }})
	sim.Cancel()
	sim.Close()

	select {
	case <-done:
		t.Fatalf("completion raised after cancel")
	default:
	}
	if _, running := sim.Running(); running {
		t.Fatalf("expected engine idle")
	}
}

func TestSimulatorUnboundedRunsUntilReplaced(t *testing.T) {
	testlog.Start(t)

	sim := NewSimulator(time.Millisecond)
	defer sim.Close()

	sim.Start(radio.UnmodulatedTX{Channel: 5})
	d, running := sim.Running()
	if !running || d.Kind() != radio.KindUnmodulatedTX {
		t.Fatalf("unexpected running descriptor: %+v", d)
	}
	sim.Start(radio.RX{Channel: 7})
	d, _ = sim.Running()
	if d.Kind() != radio.KindRX {
		t.Fatalf("expected rx to replace carrier, got %v", d.Kind())
	}
	sim.Cancel()
	sim.Cancel()
	if _, running := sim.Running(); running {
		t.Fatalf("expected idle after cancel")
	}
}
