package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/contentpassport/pimtrack/configs"
	"github.com/contentpassport/pimtrack/internal/repository"
	"github.com/contentpassport/pimtrack/internal/service"
)

// PIMRecalcJob periodically rescores passports whose matched posts
// received engagement since the last run, so leaderboards stay current
// even when nobody asks for a recalculation explicitly.
type PIMRecalcJob struct {
	cfg      config.Config
	pr       repository.PassportRepository
	pim      service.PIMService
	interval time.Duration
}

func NewPIMRecalcJob(cfg config.Config, pr repository.PassportRepository, pim service.PIMService, interval time.Duration) *PIMRecalcJob {
	return &PIMRecalcJob{
		cfg:      cfg,
		pr:       pr,
		pim:      pim,
		interval: interval,
	}
}

func (c *PIMRecalcJob) RecalculateActive() {
	ctx := context.Background()

	since := time.Now().Add(-c.interval)

	passportIDs, err := c.pr.ListActiveSince(ctx, since)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, id := range passportIDs {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(passportID int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if _, err := c.pim.CalculatePIM(ctx, passportID, c.cfg.CurrentEpoch); err != nil {
				slog.Info(err.Error())
			}
		}(id)
	}

	wg.Wait()
}
