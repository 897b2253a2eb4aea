// Package engine provides a software radio.Engine for bench use without hardware.
package engine

import (
	"sync"
	"time"

	"github.com/danmuck/radiotest/internal/radio"
	"github.com/rs/zerolog/log"
)

const DefaultPacketInterval = 10 * time.Millisecond

// Simulator logs every descriptor it is given and emulates bounded modulated
// carrier runs by counting packets on a ticker.
type Simulator struct {
	interval time.Duration

	mu      sync.Mutex
	current radio.Descriptor
	stop    chan struct{}
	wg      sync.WaitGroup
	sent    uint64
}

func NewSimulator(packetInterval time.Duration) *Simulator {
	if packetInterval <= 0 {
		packetInterval = DefaultPacketInterval
	}
	return &Simulator{interval: packetInterval}
}

func (s *Simulator) Start(d radio.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.current = d
	log.Info().
		Stringer("kind", d.Kind()).
		Int32("mode", int32(d.RadioMode())).
		Interface("descriptor", d).
		Msg("engine start")

	mtx, ok := d.(radio.ModulatedTX)
	if !ok || !mtx.Bounded() {
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	s.wg.Add(1)
	go s.transmit(mtx, stop)
}

func (s *Simulator) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		log.Info().Stringer("kind", s.current.Kind()).Msg("engine cancel")
	}
	s.stopLocked()
	s.current = nil
}

// Running returns the descriptor currently driving the radio, if any.
func (s *Simulator) Running() (radio.Descriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

// PacketsSent is the total number of emulated packets across all runs.
func (s *Simulator) PacketsSent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Close stops any run and waits for its goroutine.
func (s *Simulator) Close() {
	s.Cancel()
	s.wg.Wait()
}

func (s *Simulator) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Simulator) transmit(d radio.ModulatedTX, stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var n uint32
	for {
		select {
		case <-stop:
			log.Debug().Uint32("packets", n).Msg("engine run stopped")
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		select {
		case <-stop:
			s.mu.Unlock()
			return
		default:
		}
		n++
		s.sent++
		finished := n >= d.Packets
		if finished {
			s.current = nil
			s.stop = nil
		}
		s.mu.Unlock()

		if finished {
			log.Info().Uint32("packets", n).Msg("engine run complete")
			d.OnComplete()
			return
		}
	}
}
