package rules

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ReloadScheduler periodically reloads a Holder on a cron schedule.
type ReloadScheduler struct {
	cron   *cron.Cron
	holder *Holder
	logger *slog.Logger
}

// StartReloadSchedule starts reloading h on the standard five-field cron spec.
func StartReloadSchedule(spec string, h *Holder, logger *slog.Logger) (*ReloadScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ReloadScheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		holder: h,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(spec, s.reload); err != nil {
		return nil, fmt.Errorf("schedule rule reload %q: %w", spec, err)
	}

	s.cron.Start()
	logger.Info("rule reload schedule started", "schedule", spec)
	return s, nil
}

func (s *ReloadScheduler) reload() {
	// Reload logs its own failures; the previous rule set remains live.
	_, _ = s.holder.Reload()
}

// Stop stops the schedule and waits for a running reload to finish.
func (s *ReloadScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("rule reload schedule stopped")
}
