package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() *Order {
	return NewOrder{
		CustomerName:   "Acme",
		NumberOfCrates: 10,
		Price:          52000,
		DueTime:        time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC),
	}.Build(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestNewOrder_BuildDefaultsToPending(t *testing.T) {
	o := validOrder()
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
	require.NoError(t, o.Validate())
}

func TestOrder_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Order)
	}{
		{"blank customer", func(o *Order) { o.CustomerName = "  " }},
		{"zero crates", func(o *Order) { o.NumberOfCrates = 0 }},
		{"negative price", func(o *Order) { o.Price = -1 }},
		{"missing due time", func(o *Order) { o.DueTime = time.Time{} }},
		{"unknown status", func(o *Order) { o.Status = "shipped" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(o)
			assert.ErrorIs(t, o.Validate(), ErrInvalidOrder)
		})
	}
}

func TestOrderPatch_Apply(t *testing.T) {
	o := validOrder()
	name := "Globex"
	completed := StatusCompleted
	later := o.CreatedAt.Add(time.Hour)

	err := OrderPatch{CustomerName: &name, Status: &completed}.Apply(o, later)
	require.NoError(t, err)

	assert.Equal(t, "Globex", o.CustomerName)
	assert.Equal(t, StatusCompleted, o.Status)
	assert.Equal(t, 10, o.NumberOfCrates)
	assert.Equal(t, later, o.UpdatedAt)
}

func TestOrderPatch_ApplyRejectsInvalidResult(t *testing.T) {
	o := validOrder()
	crates := -3
	err := OrderPatch{NumberOfCrates: &crates}.Apply(o, time.Now())
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestStatus_Toggle(t *testing.T) {
	assert.Equal(t, StatusCompleted, StatusPending.Toggle())
	assert.Equal(t, StatusPending, StatusCompleted.Toggle())
}

func TestParseDueTime(t *testing.T) {
	want := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-01-08T10:00", "2025-01-08T10:00:00", "2025-01-08T10:00:00Z", "2025-01-08T11:00:00+01:00"} {
		got, err := ParseDueTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseDueTime("next tuesday")
	assert.ErrorIs(t, err, ErrInvalidTime)
}
