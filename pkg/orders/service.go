package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/storehub/pkg/models"
	"github.com/example/storehub/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cache is the slice of the redis repository the order service needs for
// read-through order caching.
type Cache interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Del(ctx context.Context, keys ...string) error
}

type Service struct {
	db             *gorm.DB
	cache          Cache
	audit          *repository.MongoRepository
	logger         *zap.Logger
	deliveryOffset time.Duration
}

// NewService wires the lifecycle manager. cache and audit may be nil; the
// service then skips caching and audit writes.
func NewService(db *gorm.DB, cache *repository.RedisRepository, audit *repository.MongoRepository, logger *zap.Logger, deliveryOffsetDays int) *Service {
	if deliveryOffsetDays <= 0 {
		deliveryOffsetDays = 5
	}
	s := &Service{
		db:             db,
		audit:          audit,
		logger:         logger,
		deliveryOffset: time.Duration(deliveryOffsetDays) * 24 * time.Hour,
	}
	if cache != nil {
		s.cache = cache
	}
	return s
}

func (s *Service) DeliveryOffset() time.Duration {
	return s.deliveryOffset
}

type ItemInput struct {
	VariantID uint    `json:"variant_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type CreateInput struct {
	CustomerID    uint
	AddressID     *uint
	StoreID       *uint
	Items         []ItemInput
	PaymentMethod models.PaymentMethod
	TotalAmount   float64
	Notes         string
	CouponCodes   []string
}

// ValidateCreate checks everything that does not need the database: item
// presence and bounds, payment method, and the total-amount tolerance.
func ValidateCreate(in CreateInput) error {
	if in.CustomerID == 0 {
		return fmt.Errorf("%w: customer is required", ErrValidation)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}
	items := make([]models.OrderItem, len(in.Items))
	for i, item := range in.Items {
		if item.VariantID == 0 {
			return fmt.Errorf("%w: item %d has no variant", ErrValidation, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrValidation, i)
		}
		if item.Price <= 0 {
			return fmt.Errorf("%w: item %d price must be positive", ErrValidation, i)
		}
		items[i] = models.OrderItem{Quantity: item.Quantity, Price: item.Price}
	}
	if !ValidPaymentMethod(in.PaymentMethod) {
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, in.PaymentMethod)
	}
	if !TotalMatches(items, in.TotalAmount) {
		return fmt.Errorf("%w: declared %.2f", ErrTotalMismatch, in.TotalAmount)
	}
	return nil
}

// Create persists a new PENDING order and its items in one transaction. The
// declared total must already match the item subtotals; violation rejects
// before anything is written.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		CustomerID:    in.CustomerID,
		AddressID:     in.AddressID,
		StoreID:       in.StoreID,
		Status:        models.OrderStatusPending,
		TotalAmount:   in.TotalAmount,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		CouponCodes:   strings.Join(in.CouponCodes, ","),
		PlacedAt:      now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.AddressID != nil {
			var addrCount int64
			err := tx.Model(&models.Address{}).
				Where("id = ? AND customer_id = ?", *in.AddressID, in.CustomerID).
				Count(&addrCount).Error
			if err != nil {
				return err
			}
			if addrCount == 0 {
				return fmt.Errorf("%w: address %d does not belong to this customer", ErrValidation, *in.AddressID)
			}
		}

		var variantCount int64
		variantIDs := make([]uint, len(in.Items))
		for i, item := range in.Items {
			variantIDs[i] = item.VariantID
		}
		if err := tx.Model(&models.Variant{}).Where("id IN ?", variantIDs).Count(&variantCount).Error; err != nil {
			return err
		}
		if int(variantCount) != len(uniqueIDs(variantIDs)) {
			return fmt.Errorf("%w: one or more variants do not exist", ErrValidation)
		}

		for _, code := range in.CouponCodes {
			var coupon models.Coupon
			if err := tx.Where("code = ? AND active = ?", code, true).First(&coupon).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: coupon %q is not active", ErrValidation, code)
				}
				return err
			}
		}

		dayStart, dayEnd := dayBounds(now)
		var seq int64
		if err := tx.Model(&models.Order{}).
			Where("placed_at >= ? AND placed_at < ?", dayStart, dayEnd).
			Count(&seq).Error; err != nil {
			return err
		}
		order.OrderNumber = FormatOrderNumber(now, seq+1)

		order.Items = make([]models.OrderItem, len(in.Items))
		for i, item := range in.Items {
			order.Items[i] = models.OrderItem{
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}

	s.cacheOrder(ctx, order)
	s.recordAudit(ctx, order, "create_order", bson.M{
		"customer_id":  order.CustomerID,
		"total_amount": order.TotalAmount,
	})
	return order, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Get loads one order with its items, consulting the cache first. Gorm's
// soft delete keeps removed orders out of scope, so they surface as
// not-found.
func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	if s.cache != nil {
		var cached models.Order
		if err := s.cache.GetJSON(ctx, orderCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	s.cacheOrder(ctx, &order)
	return &order, nil
}

// GetForCustomer enforces ownership: another customer's order is an
// access-denied failure, not a not-found one.
func (s *Service) GetForCustomer(ctx context.Context, id, customerID uint) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrAccessDenied
	}
	return order, nil
}

type Filter struct {
	CustomerID    uint
	StoreID       *uint
	Status        models.OrderStatus
	PaymentMethod models.PaymentMethod
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	PageSize      int
}

func (f Filter) validate() error {
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return fmt.Errorf("%w: date_from must not be after date_to", ErrValidation)
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	return nil
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.StoreID != nil {
		q = q.Where("store_id = ?", *f.StoreID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentMethod != "" {
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}
	// Date bounds are inclusive on both ends.
	if f.DateFrom != nil {
		q = q.Where("placed_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("placed_at <= ?", *f.DateTo)
	}
	return q
}

// List returns a page of orders plus the unpaged total.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Order, int64, error) {
	if err := f.validate(); err != nil {
		return nil, 0, err
	}

	query := f.apply(s.db.WithContext(ctx).Model(&models.Order{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var results []models.Order
	err := query.Preload("Items").
		Order("placed_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return results, total, nil
}

type UpdateInput struct {
	Status        *models.OrderStatus
	PaymentMethod *models.PaymentMethod
	Paid          *bool
	Notes         *string
	AddressID     *uint
}

// Update applies a partial administrative update. A supplied status must be
// a legal transition from the current one; invalid edges are rejected, never
// coerced.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && *in.Status != order.Status {
		if !ValidStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
		}
		if !CanTransition(order.Status, *in.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, *in.Status)
		}
		order.Status = *in.Status
	}
	if in.PaymentMethod != nil {
		if !ValidPaymentMethod(*in.PaymentMethod) {
			return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, *in.PaymentMethod)
		}
		order.PaymentMethod = *in.PaymentMethod
	}
	if in.Paid != nil {
		order.Paid = *in.Paid
	}
	if in.Notes != nil {
		order.Notes = *in.Notes
	}
	if in.AddressID != nil {
		order.AddressID = in.AddressID
	}

	if err := s.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}

	s.invalidate(ctx, order.ID)
	s.recordAudit(ctx, order, "update_order", bson.M{"status": order.Status})
	return order, nil
}

// Cancel moves a PENDING or PROCESSING order to CANCELLED and records the
// reason in the notes. customerID zero means an administrative cancel with
// no ownership check.
func (s *Service) Cancel(ctx context.Context, id, customerID uint, reason string) (*models.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", ErrValidation)
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if customerID != 0 && order.CustomerID != customerID {
		return nil, ErrAccessDenied
	}
	if !CanCancel(order.Status) {
		return nil, fmt.Errorf("%w: status is %s", ErrNotCancellable, order.Status)
	}

	order.Status = models.OrderStatusCancelled
	order.Notes = appendNote(order.Notes, "Cancelled: "+reason)

	if err := s.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, fmt.Errorf("cancel order %d: %w", id, err)
	}

	s.invalidate(ctx, order.ID)
	s.recordAudit(ctx, order, "cancel_order", bson.M{"reason": reason})
	return order, nil
}

type ReturnLine struct {
	OrderItemID uint `json:"order_item_id"`
	Quantity    int  `json:"quantity"`
}

// validateReturnLines checks every requested line against the order's items
// before any state is touched.
func validateReturnLines(items []models.OrderItem, lines []ReturnLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: return needs at least one item", ErrValidation)
	}
	byID := make(map[uint]models.OrderItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	for _, line := range lines {
		item, ok := byID[line.OrderItemID]
		if !ok {
			return fmt.Errorf("%w: item %d does not belong to this order", ErrValidation, line.OrderItemID)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: return quantity for item %d must be positive", ErrValidation, line.OrderItemID)
		}
		if line.Quantity > item.Quantity {
			return fmt.Errorf("%w: return quantity for item %d exceeds ordered quantity", ErrValidation, line.OrderItemID)
		}
	}
	return nil
}

// Return transitions a SHIPPED or DELIVERED order to RETURNED and persists
// the request as first-class return rows, atomically with the status change.
func (s *Service) Return(ctx context.Context, id, customerID uint, reason string, lines []ReturnLine) (*models.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: return reason is required", ErrValidation)
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if customerID != 0 && order.CustomerID != customerID {
		return nil, ErrAccessDenied
	}
	if !CanReturn(order.Status) {
		return nil, fmt.Errorf("%w: status is %s", ErrNotReturnable, order.Status)
	}
	if err := validateReturnLines(order.Items, lines); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ret := &models.OrderReturn{
			OrderID:     order.ID,
			Reason:      reason,
			RequestedAt: time.Now(),
			Items:       make([]models.OrderReturnItem, len(lines)),
		}
		for i, line := range lines {
			ret.Items[i] = models.OrderReturnItem{
				OrderItemID: line.OrderItemID,
				Quantity:    line.Quantity,
			}
		}
		if err := tx.Create(ret).Error; err != nil {
			return err
		}

		order.Status = models.OrderStatusReturned
		order.Notes = appendNote(order.Notes, fmt.Sprintf("Return requested (%d items): %s", len(lines), reason))
		return tx.Save(order).Error
	})
	if err != nil {
		return nil, fmt.Errorf("return order %d: %w", id, err)
	}

	s.invalidate(ctx, order.ID)
	s.recordAudit(ctx, order, "return_order", bson.M{"reason": reason, "items": len(lines)})
	return order, nil
}

// Delete soft-marks the order; the row is never structurally removed.
func (s *Service) Delete(ctx context.Context, id uint) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(order).Error; err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	s.invalidate(ctx, order.ID)
	s.recordAudit(ctx, order, "delete_order", bson.M{})
	return nil
}

type BulkStatusUpdate struct {
	OrderID uint               `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
}

type BulkResult struct {
	OrderID uint   `json:"order_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkUpdateStatus applies each update independently and in sequence. One
// item's rejection does not abort the batch; earlier successes stay
// committed.
func (s *Service) BulkUpdateStatus(ctx context.Context, updates []BulkStatusUpdate) []BulkResult {
	return applyBulk(updates, func(id uint, status models.OrderStatus) error {
		_, err := s.Update(ctx, id, UpdateInput{Status: &status})
		return err
	})
}

func applyBulk(updates []BulkStatusUpdate, apply func(id uint, status models.OrderStatus) error) []BulkResult {
	results := make([]BulkResult, 0, len(updates))
	for _, u := range updates {
		err := apply(u.OrderID, u.Status)
		res := BulkResult{OrderID: u.OrderID, Success: err == nil}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// View wraps an order with its derived display fields using the configured
// delivery offset.
func (s *Service) View(o models.Order) View {
	return NewView(o, s.deliveryOffset)
}

func appendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}

const orderCacheTTL = 30 * time.Minute

func orderCacheKey(id uint) string {
	return fmt.Sprintf("order:%d", id)
}

func (s *Service) cacheOrder(ctx context.Context, order *models.Order) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, orderCacheKey(order.ID), order, orderCacheTTL); err != nil {
		s.logger.Warn("Failed to cache order", zap.Uint("order_id", order.ID), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, orderCacheKey(id)); err != nil {
		s.logger.Warn("Failed to invalidate order cache", zap.Uint("order_id", id), zap.Error(err))
	}
}

type actorKey struct{}

// WithActor tags ctx with the authenticated subject id so audit entries can
// attribute the mutation.
func WithActor(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

func actorFrom(ctx context.Context) uint {
	id, _ := ctx.Value(actorKey{}).(uint)
	return id
}

// AuditTrail returns the recorded mutations for one order, newest first. A
// disabled audit store yields an empty trail, not an error.
func (s *Service) AuditTrail(ctx context.Context, id uint, limit int64) ([]*repository.AuditLog, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []*repository.AuditLog{}, nil
	}
	return s.audit.GetAuditLogs(ctx, order.OrderNumber, limit)
}

func (s *Service) recordAudit(ctx context.Context, order *models.Order, action string, data bson.M) {
	if s.audit == nil {
		return
	}
	actorID := actorFrom(ctx)
	go func() {
		err := s.audit.CreateAuditLog(context.Background(), &repository.AuditLog{
			Service:  "order-service",
			Action:   action,
			EntityID: order.OrderNumber,
			ActorID:  actorID,
			Data:     data,
		})
		if err != nil {
			s.logger.Warn("Failed to write audit log", zap.String("action", action), zap.Error(err))
		}
	}()
}
