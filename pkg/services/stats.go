package services

import (
	"sync/atomic"
	"time"

	"github.com/dskvich/networker-bot/pkg/domain"
)

// stats counts submissions by terminal status since start.
type stats struct {
	startedAt time.Time
	inFlight  atomic.Int64
	counts    map[domain.OutcomeStatus]*atomic.Int64
}

func NewStats(startedAt time.Time) *stats {
	counts := make(map[domain.OutcomeStatus]*atomic.Int64, len(domain.OutcomeStatuses))
	for _, status := range domain.OutcomeStatuses {
		counts[status] = &atomic.Int64{}
	}
	return &stats{startedAt: startedAt, counts: counts}
}

func (s *stats) Begin() {
	s.inFlight.Add(1)
}

// Record closes a submission started with Begin.
func (s *stats) Record(status domain.OutcomeStatus) {
	s.inFlight.Add(-1)
	if c, ok := s.counts[status]; ok {
		c.Add(1)
	}
}

func (s *stats) Snapshot() domain.StatsSnapshot {
	snap := domain.StatsSnapshot{
		StartedAt: s.startedAt,
		InFlight:  s.inFlight.Load(),
		ByStatus:  make(map[domain.OutcomeStatus]int64, len(s.counts)),
	}
	for status, c := range s.counts {
		n := c.Load()
		snap.ByStatus[status] = n
		snap.Total += n
	}
	return snap
}
