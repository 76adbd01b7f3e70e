// Package orders is the single authority for the order lifecycle: creation,
// status transitions, cancel/return gating, derived display fields and
// aggregation. The transition table below is consulted by every mutation
// path; no other copy of it exists.
package orders

import (
	"math"
	"time"

	"github.com/example/storehub/pkg/models"
)

// TotalTolerance is the absolute tolerance when comparing a declared total
// against the sum of item subtotals.
const TotalTolerance = 0.01

// transitions holds the allowed directed edges. CANCELLED and RETURNED have
// no outgoing edges.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusReturned},
	models.OrderStatusDelivered:  {models.OrderStatusReturned},
	models.OrderStatusCancelled:  {},
	models.OrderStatusReturned:   {},
}

// CanTransition reports whether from→to is an allowed edge.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanCancel: customers may cancel only before shipping.
func CanCancel(status models.OrderStatus) bool {
	return status == models.OrderStatusPending || status == models.OrderStatusProcessing
}

// CanReturn: returns are accepted once the order has shipped or arrived.
func CanReturn(status models.OrderStatus) bool {
	return status == models.OrderStatusShipped || status == models.OrderStatusDelivered
}

func ValidStatus(status models.OrderStatus) bool {
	_, ok := transitions[status]
	return ok
}

var statusLabels = map[models.OrderStatus]string{
	models.OrderStatusPending:    "Pending",
	models.OrderStatusProcessing: "Processing",
	models.OrderStatusShipped:    "Shipped",
	models.OrderStatusDelivered:  "Delivered",
	models.OrderStatusCancelled:  "Cancelled",
	models.OrderStatusReturned:   "Returned",
}

var paymentLabels = map[models.PaymentMethod]string{
	models.PaymentCard:         "Card",
	models.PaymentMpesaExpress: "M-Pesa Express",
	models.PaymentPaybill:      "Paybill",
	models.PaymentPaypal:       "PayPal",
	models.PaymentCOD:          "Cash on Delivery",
	models.PaymentOther:        "Other",
}

func StatusLabel(status models.OrderStatus) string {
	return statusLabels[status]
}

func PaymentLabel(method models.PaymentMethod) string {
	return paymentLabels[method]
}

func ValidPaymentMethod(method models.PaymentMethod) bool {
	_, ok := paymentLabels[method]
	return ok
}

// TotalMatches checks the declared total against the item subtotals within
// TotalTolerance.
func TotalMatches(items []models.OrderItem, declared float64) bool {
	var sum float64
	for _, item := range items {
		sum += item.Price * float64(item.Quantity)
	}
	return math.Abs(sum-declared) <= TotalTolerance
}

// View adds the derived display fields to an order. None of these are
// persisted; they are pure functions of the stored state.
type View struct {
	models.Order
	StatusLabel       string    `json:"status_label"`
	PaymentLabel      string    `json:"payment_label"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
	CanCancel         bool      `json:"can_cancel"`
	CanReturn         bool      `json:"can_return"`
}

func NewView(o models.Order, deliveryOffset time.Duration) View {
	return View{
		Order:             o,
		StatusLabel:       StatusLabel(o.Status),
		PaymentLabel:      PaymentLabel(o.PaymentMethod),
		EstimatedDelivery: o.PlacedAt.Add(deliveryOffset),
		CanCancel:         CanCancel(o.Status),
		CanReturn:         CanReturn(o.Status),
	}
}
