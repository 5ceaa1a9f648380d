package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/logger"
	"github.com/MrSnakeDoc/guide/internal/sources/seed"
)

// SeedSubmitterID is the synthetic identity that owns seeded resources.
const SeedSubmitterID = "system:seed"

// Submitter accepts drafts through the regular submit path.
type Submitter interface {
	Submit(ctx context.Context, draft *domain.Draft, submitterID, idemToken string) (*domain.Resource, error)
}

// SeedReloader handles periodic reloading of the curated seed catalog.
type SeedReloader struct {
	loader        *seed.Loader
	mapper        *seed.Mapper
	submitter     Submitter
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
	seeded        map[string]bool
}

// NewSeedReloader creates a new seed reloader
func NewSeedReloader(
	seedFile string,
	submitter Submitter,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedReloader {
	return &SeedReloader{
		loader:        seed.NewLoader(seedFile),
		mapper:        seed.NewMapper(),
		submitter:     submitter,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		seeded:        make(map[string]bool),
	}
}

// Start begins the periodic reload process
func (sr *SeedReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial seed reload failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed catalog",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual seed reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload seed catalog",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *SeedReloader) Stop() {
	close(sr.stopCh)
}

// Reload loads the catalog and submits any entries not seeded yet. Each
// submit carries an idempotency token derived from the URL so a restart
// within the token TTL replays instead of duplicating.
func (sr *SeedReloader) Reload(ctx context.Context) error {
	sr.logger.Info("reloading seed catalog")

	catalog, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed catalog: %w", err)
	}

	drafts, err := sr.mapper.MapDrafts(catalog)
	if err != nil {
		return fmt.Errorf("failed to map seed catalog: %w", err)
	}

	submitted := 0
	for _, draft := range drafts {
		if sr.seeded[draft.URL] {
			continue
		}

		if _, err := sr.submitter.Submit(ctx, draft, SeedSubmitterID, "seed:"+draft.URL); err != nil {
			sr.logger.Warn("failed to seed resource",
				logger.String("url", draft.URL),
				logger.Error(err))
			continue
		}

		sr.seeded[draft.URL] = true
		submitted++
	}

	sr.logger.Info("seed catalog reloaded",
		logger.Int("entries", len(drafts)),
		logger.Int("submitted", submitted))

	return nil
}
