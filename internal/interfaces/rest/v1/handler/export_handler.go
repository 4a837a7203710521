package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-order-hub/internal/infrastructure/export"
	"go-order-hub/internal/infrastructure/logger"
	"go-order-hub/internal/port/inbound"
)

type ExportHandler struct {
	orders   inbound.OrderUseCase
	exporter *export.Exporter
	logger   logger.Logger
	now      func() time.Time
}

func NewExportHandler(orders inbound.OrderUseCase, exporter *export.Exporter, logger logger.Logger) *ExportHandler {
	return &ExportHandler{
		orders:   orders,
		exporter: exporter,
		logger:   logger.WithField("handler", "export"),
		now:      time.Now,
	}
}

// Orders streams the order book as a csv (default) or xlsx attachment.
func (h *ExportHandler) Orders(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "export orders")
		return
	}

	// Rendered into memory first so a failure still yields a JSON error.
	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, format, orders); err != nil {
		respondError(c, h.logger, err, "export orders")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.FileName(h.now())+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
