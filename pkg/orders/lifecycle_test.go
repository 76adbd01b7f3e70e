package orders

import (
	"testing"
	"time"

	"github.com/example/storehub/pkg/models"
	"github.com/stretchr/testify/assert"
)

var allStatuses = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
	models.OrderStatusCancelled,
	models.OrderStatusReturned,
}

func TestCanTransitionMatrix(t *testing.T) {
	allowed := map[models.OrderStatus]map[models.OrderStatus]bool{
		models.OrderStatusPending:    {models.OrderStatusProcessing: true, models.OrderStatusCancelled: true},
		models.OrderStatusProcessing: {models.OrderStatusShipped: true, models.OrderStatusCancelled: true},
		models.OrderStatusShipped:    {models.OrderStatusDelivered: true, models.OrderStatusReturned: true},
		models.OrderStatusDelivered:  {models.OrderStatusReturned: true},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[from][to]
			assert.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	for _, terminal := range []models.OrderStatus{models.OrderStatusCancelled, models.OrderStatusReturned} {
		for _, to := range allStatuses {
			assert.Falsef(t, CanTransition(terminal, to), "%s must not transition to %s", terminal, to)
		}
	}
}

func TestCanCancel(t *testing.T) {
	cancellable := map[models.OrderStatus]bool{
		models.OrderStatusPending:    true,
		models.OrderStatusProcessing: true,
	}
	for _, status := range allStatuses {
		assert.Equalf(t, cancellable[status], CanCancel(status), "status %s", status)
	}
}

func TestCanReturn(t *testing.T) {
	returnable := map[models.OrderStatus]bool{
		models.OrderStatusShipped:   true,
		models.OrderStatusDelivered: true,
	}
	for _, status := range allStatuses {
		assert.Equalf(t, returnable[status], CanReturn(status), "status %s", status)
	}
}

func TestTotalMatches(t *testing.T) {
	items := []models.OrderItem{
		{Quantity: 2, Price: 10.00},
		{Quantity: 1, Price: 5.00},
	}

	assert.True(t, TotalMatches(items, 25.00))
	assert.True(t, TotalMatches(items, 25.01))
	assert.True(t, TotalMatches(items, 24.99))
	assert.False(t, TotalMatches(items, 25.02))
	assert.False(t, TotalMatches(items, 30.00))
}

func TestNewView(t *testing.T) {
	placed := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	order := models.Order{
		Status:        models.OrderStatusShipped,
		PaymentMethod: models.PaymentMpesaExpress,
		PlacedAt:      placed,
	}

	view := NewView(order, 5*24*time.Hour)

	assert.Equal(t, "Shipped", view.StatusLabel)
	assert.Equal(t, "M-Pesa Express", view.PaymentLabel)
	assert.Equal(t, placed.Add(5*24*time.Hour), view.EstimatedDelivery)
	assert.False(t, view.CanCancel)
	assert.True(t, view.CanReturn)
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []models.PaymentMethod{
		models.PaymentCard, models.PaymentMpesaExpress, models.PaymentPaybill,
		models.PaymentPaypal, models.PaymentCOD, models.PaymentOther,
	} {
		assert.True(t, ValidPaymentMethod(m))
	}
	assert.False(t, ValidPaymentMethod("BITCOIN"))
}
