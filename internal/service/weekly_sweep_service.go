package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// WeeklySweepService periodically re-materialises "all_week" locked-session
// families on a fixed cadence rather than on every single edit, so a burst
// of edits within one interval only pays for one rematerialisation pass
// (SPEC_FULL.md §3, "Background weekly-template sweep").
type WeeklySweepService struct {
	cron      *cron.Cron
	timetable *TimetableService
	logger    *zap.Logger
	entryID   cron.EntryID
}

// NewWeeklySweepService constructs the service.
func NewWeeklySweepService(timetableSvc *TimetableService, logger *zap.Logger) *WeeklySweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklySweepService{
		cron:      cron.New(),
		timetable: timetableSvc,
		logger:    logger,
	}
}

// Start schedules the sweep job and begins running it in the background.
func (s *WeeklySweepService) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	id, err := s.cron.AddFunc("@every "+interval.String(), s.runSweep)
	if err != nil {
		s.logger.Error("failed to schedule weekly sweep", zap.Error(err))
		return
	}
	s.entryID = id
	s.cron.Start()
}

// Stop halts the scheduler, waiting for any in-flight sweep to finish.
func (s *WeeklySweepService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *WeeklySweepService) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.timetable.SweepWeeklyLockedSessions(ctx); err != nil {
		s.logger.Warn("weekly sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("weekly sweep completed")
}
