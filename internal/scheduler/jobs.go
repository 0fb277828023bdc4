package scheduler

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/events"
)

const (
	HeartbeatJobName  = "theme_events_heartbeat"
	CacheSweepJobName = "theme_cache_sweep"
)

// CacheSweeper drops expired cache entries and reports how many.
type CacheSweeper interface {
	SweepCache() int
}

// RegisterThemeJobs schedules the SSE heartbeat and the cache sweep.
func RegisterThemeJobs(s *Service, hub *events.Hub, sweeper CacheSweeper, heartbeatCron, sweepCron string) error {
	if hub == nil {
		return fmt.Errorf("theme jobs require an event hub")
	}
	if sweeper == nil {
		return fmt.Errorf("theme jobs require a cache sweeper")
	}

	if _, err := s.AddJob(HeartbeatJobName, heartbeatCron, func() {
		hub.Publish(events.Event{Type: events.Heartbeat})
	}); err != nil {
		return err
	}

	sweepLogger := log.With().Str("component", "theme_cache_sweep_job").Logger()
	if _, err := s.AddJob(CacheSweepJobName, sweepCron, func() {
		if removed := sweeper.SweepCache(); removed > 0 {
			sweepLogger.Debug().Int("removed", removed).Msg("Expired effective themes removed")
		}
	}); err != nil {
		return err
	}
	return nil
}
