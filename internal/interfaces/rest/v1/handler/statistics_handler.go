package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-order-hub/internal/infrastructure/logger"
	"go-order-hub/internal/port/inbound"
)

type StatisticsHandler struct {
	stats  inbound.StatisticsUseCase
	logger logger.Logger
}

func NewStatisticsHandler(stats inbound.StatisticsUseCase, logger logger.Logger) *StatisticsHandler {
	return &StatisticsHandler{
		stats:  stats,
		logger: logger.WithField("handler", "statistics"),
	}
}

func (h *StatisticsHandler) Get(c *gin.Context) {
	stats, err := h.stats.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "fetch statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
