package domain

import "time"

type StatsSnapshot struct {
	StartedAt time.Time               `json:"started_at"`
	InFlight  int64                   `json:"in_flight"`
	Total     int64                   `json:"total"`
	ByStatus  map[OutcomeStatus]int64 `json:"by_status"`
}
