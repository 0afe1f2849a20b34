package poller

import (
	"context"
	"sync"
	"time"

	"webcorp/telemetry-bridge/internal/cursor"
	"webcorp/telemetry-bridge/internal/models"
	"webcorp/telemetry-bridge/internal/observability"

	"go.uber.org/zap"
)

// PositionSource fetches the current position snapshot.
type PositionSource interface {
	FetchPositions(ctx context.Context) ([]models.PositionRecord, error)
}

// EventForwarder hands a surviving record to the forwarding step.
type EventForwarder interface {
	Forward(ctx context.Context, pos models.PositionRecord) error
}

// Poller drives the periodic fetch → dedup → forward cycle. A tick is
// skipped, never queued, while the previous fetch is still in flight,
// so cycles cannot overlap even if the interval is too short.
type Poller struct {
	source       PositionSource
	cursors      *cursor.Store
	forwarder    EventForwarder
	interval     time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger

	mu         sync.Mutex
	busy       bool
	lastUpdate time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPoller creates a new position poller
func NewPoller(
	source PositionSource,
	cursors *cursor.Store,
	forwarder EventForwarder,
	interval time.Duration,
	fetchTimeout time.Duration,
	logger *zap.Logger,
) *Poller {
	return &Poller{
		source:       source,
		cursors:      cursors,
		forwarder:    forwarder,
		interval:     interval,
		fetchTimeout: fetchTimeout,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the polling loop
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.loop()

	p.logger.Info("Position poller started",
		zap.Duration("interval", p.interval),
	)
}

// Stop stops the polling loop and waits for an in-flight tick
func (p *Poller) Stop() {
	select {
	case <-p.stopChan:
		return
	default:
		close(p.stopChan)
	}
	p.wg.Wait()
	p.logger.Info("Position poller stopped")
}

// LastUpdate returns the time of the last completed tick
func (p *Poller) LastUpdate() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUpdate
}

func (p *Poller) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial tick so a fresh start does not wait a full interval
	p.tick()

	for {
		select {
		case <-ticker.C:
			p.tick()
		case <-p.stopChan:
			return
		}
	}
}

// tick runs one fetch-and-forward cycle under the single-flight guard
func (p *Poller) tick() {
	if !p.begin() {
		p.logger.Debug("Previous fetch still in flight, skipping tick")
		observability.TicksSkipped.Inc()
		return
	}
	defer p.end()

	ctx, cancel := context.WithTimeout(context.Background(), p.fetchTimeout)
	positions, err := p.source.FetchPositions(ctx)
	cancel()
	if err != nil {
		// The whole tick is aborted; cursors stay untouched and the
		// next scheduled tick retries naturally.
		p.logger.Error("Failed to fetch positions, aborting tick",
			zap.Error(err),
		)
		observability.FetchErrors.Inc()
		return
	}
	observability.PositionsFetched.Add(float64(len(positions)))

	for _, pos := range positions {
		last := p.cursors.Get(pos.DeviceID)
		if pos.ID <= last {
			continue
		}

		// Advance before forwarding: at-most-once semantics. A failed
		// forward is logged and the position stays consumed.
		p.cursors.Advance(pos.DeviceID, pos.ID)
		if err := p.cursors.Persist(); err != nil {
			p.logger.Warn("Failed to persist cursors",
				zap.Error(err),
			)
		}

		if err := p.forwarder.Forward(context.Background(), pos); err != nil {
			p.logger.Error("Failed to forward position",
				zap.Error(err),
				zap.Int64("position_id", pos.ID),
				zap.Int64("device_id", pos.DeviceID),
			)
			observability.ForwardErrors.Inc()
			continue
		}
		observability.PositionsForwarded.Inc()
	}

	p.mu.Lock()
	p.lastUpdate = time.Now()
	p.mu.Unlock()
}

func (p *Poller) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return false
	}
	p.busy = true
	return true
}

func (p *Poller) end() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}
