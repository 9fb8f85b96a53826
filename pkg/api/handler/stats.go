package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dskvich/networker-bot/pkg/api/response"
	"github.com/dskvich/networker-bot/pkg/domain"
)

type StatsProvider interface {
	Snapshot() domain.StatsSnapshot
}

type stats struct {
	provider StatsProvider
	writer   response.JSONResponseWriter
	now      func() time.Time
}

func NewStats(provider StatsProvider) *stats {
	return &stats{
		provider: provider,
		writer:   response.JSONResponseWriter{},
		now:      time.Now,
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *stats) Health(c *gin.Context) {
	snap := s.provider.Snapshot()
	s.writer.WriteSuccessResponse(c, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: s.now().Sub(snap.StartedAt).Round(time.Second).String(),
	})
}

func (s *stats) Stats(c *gin.Context) {
	s.writer.WriteSuccessResponse(c, http.StatusOK, s.provider.Snapshot())
}
