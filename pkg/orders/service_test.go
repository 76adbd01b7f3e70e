package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/example/storehub/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validCreateInput() CreateInput {
	return CreateInput{
		CustomerID: 7,
		Items: []ItemInput{
			{VariantID: 1, Quantity: 2, Price: 10.00},
			{VariantID: 2, Quantity: 1, Price: 5.00},
		},
		PaymentMethod: models.PaymentCard,
		TotalAmount:   25.00,
	}
}

func TestValidateCreateAcceptsMatchingTotal(t *testing.T) {
	require.NoError(t, ValidateCreate(validCreateInput()))
}

func TestValidateCreateRejectsTotalMismatch(t *testing.T) {
	in := validCreateInput()
	in.TotalAmount = 30.00

	err := ValidateCreate(in)
	assert.ErrorIs(t, err, ErrTotalMismatch)
}

func TestValidateCreateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"no customer", func(in *CreateInput) { in.CustomerID = 0 }},
		{"no items", func(in *CreateInput) { in.Items = nil }},
		{"zero quantity", func(in *CreateInput) { in.Items[0].Quantity = 0 }},
		{"negative quantity", func(in *CreateInput) { in.Items[0].Quantity = -1 }},
		{"zero price", func(in *CreateInput) { in.Items[1].Price = 0 }},
		{"missing variant", func(in *CreateInput) { in.Items[0].VariantID = 0 }},
		{"bad payment method", func(in *CreateInput) { in.PaymentMethod = "CHEQUE" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			assert.ErrorIs(t, ValidateCreate(in), ErrValidation)
		})
	}
}

func TestValidateReturnLines(t *testing.T) {
	items := []models.OrderItem{
		{ID: 11, Quantity: 2},
		{ID: 12, Quantity: 1},
	}

	require.NoError(t, validateReturnLines(items, []ReturnLine{
		{OrderItemID: 11, Quantity: 2},
		{OrderItemID: 12, Quantity: 1},
	}))

	// Quantity above the ordered amount is rejected before any mutation.
	err := validateReturnLines(items, []ReturnLine{{OrderItemID: 11, Quantity: 3}})
	assert.ErrorIs(t, err, ErrValidation)

	// Foreign item id.
	err = validateReturnLines(items, []ReturnLine{{OrderItemID: 99, Quantity: 1}})
	assert.ErrorIs(t, err, ErrValidation)

	err = validateReturnLines(items, []ReturnLine{{OrderItemID: 12, Quantity: 0}})
	assert.ErrorIs(t, err, ErrValidation)

	err = validateReturnLines(items, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFilterValidate(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	assert.NoError(t, Filter{DateFrom: &from, DateTo: &to}.validate())
	assert.NoError(t, Filter{DateFrom: &from, DateTo: &from}.validate())
	assert.ErrorIs(t, Filter{DateFrom: &to, DateTo: &from}.validate(), ErrValidation)
	assert.ErrorIs(t, Filter{Status: "SHIPPING"}.validate(), ErrValidation)
}

func TestAppendNote(t *testing.T) {
	assert.Equal(t, "first", appendNote("", "first"))
	assert.Equal(t, "first\nsecond", appendNote("first", "second"))
}

func TestFormatOrderNumber(t *testing.T) {
	placed := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "ORD-20260828-000042", FormatOrderNumber(placed, 42))
	assert.Equal(t, "ORD-20260828-000001", FormatOrderNumber(placed, 1))
}

func TestDayBounds(t *testing.T) {
	at := time.Date(2026, 8, 28, 23, 59, 59, 0, time.UTC)
	start, end := dayBounds(at)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), end)
}

func TestBulkUpdateContinuesPastFailures(t *testing.T) {
	updates := []BulkStatusUpdate{
		{OrderID: 1, Status: models.OrderStatusProcessing},
		{OrderID: 2, Status: models.OrderStatusProcessing},
		{OrderID: 3, Status: models.OrderStatusProcessing},
	}

	var applied []uint
	results := applyBulk(updates, func(id uint, _ models.OrderStatus) error {
		applied = append(applied, id)
		if id == 2 {
			return ErrNotFound
		}
		return nil
	})

	// The missing order yields a failure entry; the orders around it are
	// still applied and reported as successes.
	require.Len(t, results, 3)
	assert.Equal(t, []uint{1, 2, 3}, applied)

	assert.True(t, results[0].Success)
	assert.Empty(t, results[0].Error)
	assert.False(t, results[1].Success)
	assert.Equal(t, uint(2), results[1].OrderID)
	assert.Equal(t, ErrNotFound.Error(), results[1].Error)
	assert.True(t, results[2].Success)
}

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	return nil
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	data, ok := f.entries[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func TestGetServesCachedOrder(t *testing.T) {
	cache := newFakeCache()
	svc := &Service{cache: cache, logger: zap.NewNop()}

	order := models.Order{
		ID:          31,
		CustomerID:  7,
		OrderNumber: "ORD-20260828-000001",
		Status:      models.OrderStatusPending,
	}
	svc.cacheOrder(context.Background(), &order)

	// db stays nil: a cache hit must be answered without touching it.
	got, err := svc.Get(context.Background(), 31)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, order.CustomerID, got.CustomerID)
	assert.Equal(t, order.Status, got.Status)
}

func TestInvalidateDropsCachedOrder(t *testing.T) {
	cache := newFakeCache()
	svc := &Service{cache: cache, logger: zap.NewNop()}

	svc.cacheOrder(context.Background(), &models.Order{ID: 12})
	_, ok := cache.entries[orderCacheKey(12)]
	require.True(t, ok)

	svc.invalidate(context.Background(), 12)
	_, ok = cache.entries[orderCacheKey(12)]
	assert.False(t, ok)
}

func TestActorContext(t *testing.T) {
	assert.Equal(t, uint(0), actorFrom(context.Background()))
	assert.Equal(t, uint(42), actorFrom(WithActor(context.Background(), 42)))
}

func TestCSVRecord(t *testing.T) {
	order := models.Order{
		OrderNumber:   "ORD-20260828-000003",
		CustomerID:    9,
		Status:        models.OrderStatusDelivered,
		PaymentMethod: models.PaymentCOD,
		Paid:          true,
		TotalAmount:   149.5,
		PlacedAt:      time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}

	rec := csvRecord(order)
	require.Len(t, rec, len(csvHeader))
	assert.Equal(t, []string{
		"ORD-20260828-000003", "9", "DELIVERED", "COD",
		"true", "149.50", "2026-08-28T09:00:00Z",
	}, rec)
}
