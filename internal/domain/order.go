package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Toggle flips pending to completed and back.
func (s Status) Toggle() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Order is a customer crate order.
type Order struct {
	ID             int64     `json:"id"`
	CustomerName   string    `json:"customerName"`
	NumberOfCrates int       `json:"numberOfCrates"`
	Price          int64     `json:"price"`
	DueTime        time.Time `json:"dueTime"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Validate checks the invariants every stored order must satisfy.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.CustomerName) == "" {
		return fmt.Errorf("%w: customerName is required", ErrInvalidOrder)
	}
	if o.NumberOfCrates <= 0 {
		return fmt.Errorf("%w: numberOfCrates must be positive", ErrInvalidOrder)
	}
	if o.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidOrder)
	}
	if o.DueTime.IsZero() {
		return fmt.Errorf("%w: dueTime is required", ErrInvalidOrder)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidOrder, ErrInvalidStatus, o.Status)
	}
	return nil
}

// NewOrder holds the caller-supplied fields of an order about to be created.
type NewOrder struct {
	CustomerName   string
	NumberOfCrates int
	Price          int64
	DueTime        time.Time
}

// Build returns a pending order stamped with now. The id is left for the store.
func (n NewOrder) Build(now time.Time) *Order {
	return &Order{
		CustomerName:   strings.TrimSpace(n.CustomerName),
		NumberOfCrates: n.NumberOfCrates,
		Price:          n.Price,
		DueTime:        n.DueTime.UTC(),
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// OrderPatch is a partial update; nil fields are left unchanged.
type OrderPatch struct {
	CustomerName   *string
	NumberOfCrates *int
	Price          *int64
	DueTime        *time.Time
	Status         *Status
}

// IsEmpty reports whether the patch changes nothing.
func (p OrderPatch) IsEmpty() bool {
	return p.CustomerName == nil && p.NumberOfCrates == nil && p.Price == nil &&
		p.DueTime == nil && p.Status == nil
}

// Apply merges the patch into o and re-validates the result.
func (p OrderPatch) Apply(o *Order, now time.Time) error {
	if p.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*p.CustomerName)
	}
	if p.NumberOfCrates != nil {
		o.NumberOfCrates = *p.NumberOfCrates
	}
	if p.Price != nil {
		o.Price = *p.Price
	}
	if p.DueTime != nil {
		o.DueTime = p.DueTime.UTC()
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	o.UpdatedAt = now
	return o.Validate()
}

// Statistics is the aggregate view shown on the dashboard.
type Statistics struct {
	TotalOrders   int64 `json:"totalOrders"`
	TotalRevenue  int64 `json:"totalRevenue"`
	PendingOrders int64 `json:"pendingOrders"`
}

// BackfillResult reports what a status backfill changed.
type BackfillResult struct {
	Message       string `json:"message"`
	OrdersUpdated int64  `json:"ordersUpdated"`
	TotalOrders   int64  `json:"totalOrders"`
}

var dueTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDueTime accepts RFC 3339 as well as the zone-less layouts produced by
// HTML datetime-local inputs. Zone-less values are read as UTC.
func ParseDueTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}
