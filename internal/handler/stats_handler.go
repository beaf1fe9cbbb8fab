package handler

import (
	"net/http"

	"lifeline/internal/service"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Get(c *gin.Context) {
	respond(c, http.StatusOK, h.stats.Stats())
}
