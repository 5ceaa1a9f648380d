package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/guide/internal/logger"
)

const (
	// DefaultIdleThreshold is how long a unit may sit idle before eviction
	DefaultIdleThreshold = 10 * time.Minute
)

// Evicter releases in-memory units that have been idle past a threshold.
type Evicter interface {
	EvictIdle(ttl time.Duration) int
	LiveUnits() int
}

// UnitCollector periodically evicts idle in-memory store units. Durable
// state stays in Redis; an evicted unit is rebuilt on its next request.
type UnitCollector struct {
	evicter   Evicter
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
}

// NewUnitCollector creates a new idle unit collector
func NewUnitCollector(
	evicter Evicter,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *UnitCollector {
	if threshold == 0 {
		threshold = DefaultIdleThreshold
	}

	return &UnitCollector{
		evicter:   evicter,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic collection process
func (uc *UnitCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(uc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				uc.Collect()
			case <-uc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the collector
func (uc *UnitCollector) Stop() {
	close(uc.stopCh)
}

// Collect evicts units idle past the threshold
func (uc *UnitCollector) Collect() {
	evicted := uc.evicter.EvictIdle(uc.threshold)

	if evicted > 0 {
		uc.logger.Info("evicted idle units",
			logger.Int("evicted", evicted),
			logger.Int("live", uc.evicter.LiveUnits()))
	} else {
		uc.logger.Debug("no idle units to evict")
	}
}
