package v1

import (
	"github.com/gin-gonic/gin"

	"go-order-hub/internal/infrastructure/export"
	"go-order-hub/internal/infrastructure/logger"
	"go-order-hub/internal/interfaces/rest/v1/handler"
	"go-order-hub/internal/port/inbound"
)

// InitOrderRouter mounts the order, statistics, export and migrate routes under /api.
func InitOrderRouter(
	logger logger.Logger,
	orders inbound.OrderUseCase,
	stats inbound.StatisticsUseCase,
	exporter *export.Exporter,
	rg *gin.RouterGroup,
) {
	orderHandler := handler.NewOrderHandler(orders, logger)
	statsHandler := handler.NewStatisticsHandler(stats, logger)
	exportHandler := handler.NewExportHandler(orders, exporter, logger)

	api := rg.Group("/api")

	ordersGroup := api.Group("/orders")
	{
		ordersGroup.GET("", orderHandler.List)
		ordersGroup.POST("", orderHandler.Create)
		ordersGroup.PUT("", orderHandler.UpdateByBody)
		ordersGroup.DELETE("", orderHandler.DeleteByBody)

		ordersGroup.GET("/:id", orderHandler.Get)
		ordersGroup.PUT("/:id", orderHandler.Update)
		ordersGroup.DELETE("/:id", orderHandler.Delete)
		ordersGroup.POST("/:id/toggle", orderHandler.ToggleStatus)
	}

	api.GET("/statistics", statsHandler.Get)
	api.GET("/export/orders", exportHandler.Orders)
	api.GET("/migrate", orderHandler.Migrate)
}
