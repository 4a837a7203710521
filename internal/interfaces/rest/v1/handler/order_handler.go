package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-order-hub/internal/domain"
	"go-order-hub/internal/infrastructure/logger"
	"go-order-hub/internal/port/inbound"
)

type OrderHandler struct {
	orders inbound.OrderUseCase
	logger logger.Logger
}

type CreateOrderRequest struct {
	CustomerName   string `json:"customerName"   binding:"required"`
	NumberOfCrates int    `json:"numberOfCrates" binding:"required,gt=0"`
	Price          *int64 `json:"price"          binding:"required,gte=0"`
	DueTime        string `json:"dueTime"        binding:"required"`
}

// UpdateOrderRequest carries only the fields to change. ID is read by the
// routes that take the identity from the body instead of the path.
type UpdateOrderRequest struct {
	ID             *int64  `json:"id"`
	CustomerName   *string `json:"customerName"   binding:"omitempty,min=1"`
	NumberOfCrates *int    `json:"numberOfCrates" binding:"omitempty,gt=0"`
	Price          *int64  `json:"price"          binding:"omitempty,gte=0"`
	DueTime        *string `json:"dueTime"`
	Status         *string `json:"status"         binding:"omitempty,oneof=pending completed"`
}

type DeleteOrderRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
}

func NewOrderHandler(orders inbound.OrderUseCase, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger.WithField("handler", "orders"),
	}
}

// List returns every order in ascending id order.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "fetch orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "fetch order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	due, err := domain.ParseDueTime(req.DueTime)
	if err != nil {
		respondError(c, h.logger, err, "create order")
		return
	}

	order, err := h.orders.Create(c.Request.Context(), domain.NewOrder{
		CustomerName:   req.CustomerName,
		NumberOfCrates: req.NumberOfCrates,
		Price:          *req.Price,
		DueTime:        due,
	})
	if err != nil {
		respondError(c, h.logger, err, "create order")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// Update applies a partial update to the order named in the path.
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.update(c, id, req)
}

// UpdateByBody is Update with the identity taken from the body's id field.
func (h *OrderHandler) UpdateByBody(c *gin.Context) {
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.ID == nil || *req.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": "id is required",
		})
		return
	}
	h.update(c, *req.ID, req)
}

func (h *OrderHandler) update(c *gin.Context, id int64, req UpdateOrderRequest) {
	patch, err := req.toPatch()
	if err != nil {
		respondError(c, h.logger, err, "update order")
		return
	}

	order, err := h.orders.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, err, "update order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ToggleStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "update order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	h.delete(c, id)
}

// DeleteByBody is Delete with the identity taken from the body's id field.
func (h *OrderHandler) DeleteByBody(c *gin.Context) {
	var req DeleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.delete(c, req.ID)
}

func (h *OrderHandler) delete(c *gin.Context, id int64) {
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "delete order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Migrate backfills missing statuses and resyncs the id sequence.
func (h *OrderHandler) Migrate(c *gin.Context) {
	result, err := h.orders.Backfill(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "migrate orders")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": fmt.Sprintf("invalid order id %q", c.Param("id")),
		})
		return 0, false
	}
	return id, true
}

func (r UpdateOrderRequest) toPatch() (domain.OrderPatch, error) {
	patch := domain.OrderPatch{
		CustomerName:   r.CustomerName,
		NumberOfCrates: r.NumberOfCrates,
		Price:          r.Price,
	}
	if r.DueTime != nil {
		due, err := domain.ParseDueTime(*r.DueTime)
		if err != nil {
			return patch, err
		}
		patch.DueTime = &due
	}
	if r.Status != nil {
		status := domain.Status(*r.Status)
		patch.Status = &status
	}
	return patch, nil
}
