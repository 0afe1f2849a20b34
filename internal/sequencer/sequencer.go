package sequencer

import (
	"sort"
	"sync"

	"webcorp/telemetry-bridge/internal/classifier"

	"go.uber.org/zap"
)

// maxCounter caps the per-device counter; reaching it wraps back to 1
// instead of growing without bound.
const maxCounter = 1000000

// resetEventCodes force a device's counter back to 1 before any
// increment happens.
var resetEventCodes = map[int]struct{}{
	classifier.EventIgnitionToggle: {},
	classifier.EventTripToggle:     {},
}

// Sequencer generates per-device sequential message identifiers keyed
// by IMEI. Counters live in memory only and are lost on restart.
type Sequencer struct {
	logger   *zap.Logger
	mu       sync.Mutex
	counters map[string]int
}

// NewSequencer creates a new message sequencer
func NewSequencer(logger *zap.Logger) *Sequencer {
	return &Sequencer{
		logger:   logger,
		counters: make(map[string]int),
	}
}

// Next returns the next message identifier for the device. A
// previously-unseen IMEI starts at 1. Reset event codes return 1 and
// leave the counter at 1; they take priority over incrementing. When
// the incremented counter would exceed the ceiling, the counter wraps
// to 1 and 1 is returned.
func (s *Sequencer) Next(imei string, eventCode int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.counters[imei]
	if !ok {
		current = 1
		s.counters[imei] = 1
		s.logger.Info("Initialized message counter",
			zap.String("imei", imei),
		)
	}

	if _, reset := resetEventCodes[eventCode]; reset {
		s.counters[imei] = 1
		s.logger.Info("Message counter reset by event",
			zap.String("imei", imei),
			zap.Int("event_code", eventCode),
		)
		return 1
	}

	next := current + 1
	if next > maxCounter {
		s.counters[imei] = 1
		s.logger.Info("Message counter reached ceiling, wrapped to 1",
			zap.String("imei", imei),
		)
		return 1
	}

	s.counters[imei] = next
	return current
}

// Get returns the current counter for the device, if tracked
func (s *Sequencer) Get(imei string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counter, ok := s.counters[imei]
	return counter, ok
}

// Reset sets the device's counter back to 1
func (s *Sequencer) Reset(imei string) {
	s.mu.Lock()
	s.counters[imei] = 1
	s.mu.Unlock()

	s.logger.Info("Message counter reset",
		zap.String("imei", imei),
	)
}

// ResetAll clears every tracked counter
func (s *Sequencer) ResetAll() {
	s.mu.Lock()
	s.counters = make(map[string]int)
	s.mu.Unlock()

	s.logger.Info("All message counters reset")
}

// Count returns the number of devices with a tracked counter
func (s *Sequencer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// Snapshot returns a copy of all counters for observability
func (s *Sequencer) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]int, len(s.counters))
	for imei, counter := range s.counters {
		snapshot[imei] = counter
	}
	return snapshot
}

// ResetCodes lists the event codes that reset counters
func ResetCodes() []int {
	codes := make([]int, 0, len(resetEventCodes))
	for code := range resetEventCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
