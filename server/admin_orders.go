package server

import (
	"strconv"
	"time"

	"github.com/example/storehub/pkg/httpx"
	"github.com/example/storehub/pkg/models"
	"github.com/example/storehub/pkg/orders"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) listOrders(c *gin.Context) {
	filter, ok := s.orderFilterFromQuery(c)
	if !ok {
		return
	}

	results, total, err := s.orders.List(c.Request.Context(), filter)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}

	views := make([]orders.View, len(results))
	for i, o := range results {
		views[i] = s.orders.View(o)
	}
	httpx.OK(c, gin.H{"orders": views, "total": total})
}

func (s *Server) getOrder(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := s.orders.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.OK(c, s.orders.View(*order))
}

const auditTrailLimit = 50

func (s *Server) orderAudit(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	entries, err := s.orders.AuditTrail(c.Request.Context(), id, auditTrailLimit)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.OK(c, gin.H{"entries": entries})
}

type updateOrderRequest struct {
	Status        *string `json:"status"`
	PaymentMethod *string `json:"payment_method"`
	Paid          *bool   `json:"paid"`
	Notes         *string `json:"notes"`
	AddressID     *uint   `json:"address_id"`
}

func (s *Server) updateOrder(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	input := orders.UpdateInput{
		Paid:      req.Paid,
		Notes:     req.Notes,
		AddressID: req.AddressID,
	}
	if req.Status != nil {
		status := models.OrderStatus(*req.Status)
		input.Status = &status
	}
	if req.PaymentMethod != nil {
		method := models.PaymentMethod(*req.PaymentMethod)
		input.PaymentMethod = &method
	}

	order, err := s.orders.Update(c.Request.Context(), id, input)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.OKMessage(c, "order updated", s.orders.View(*order))
}

func (s *Server) deleteOrder(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.orders.Delete(c.Request.Context(), id); err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.OKMessage(c, "order deleted", gin.H{"id": id})
}

func (s *Server) orderAnalytics(c *gin.Context) {
	storeID, ok := optionalUintQuery(c, "store_id")
	if !ok {
		return
	}
	dateFrom, dateTo, ok := dateRangeFromQuery(c)
	if !ok {
		return
	}

	analytics, err := s.orders.Analytics(c.Request.Context(), orders.AnalyticsFilter{
		StoreID:  storeID,
		DateFrom: dateFrom,
		DateTo:   dateTo,
	})
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.OK(c, analytics)
}

func (s *Server) exportOrders(c *gin.Context) {
	filter, ok := s.orderFilterFromQuery(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
	if err := s.orders.ExportCSV(c.Request.Context(), filter, c.Writer); err != nil {
		// Headers may already be out; log instead of rewriting the body.
		s.logger.Error("CSV export failed", zap.Error(err))
	}
}

type bulkUpdateRequest struct {
	Updates []orders.BulkStatusUpdate `json:"updates" binding:"required,min=1"`
}

func (s *Server) bulkUpdateOrders(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	results := s.orders.BulkUpdateStatus(c.Request.Context(), req.Updates)
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	httpx.OK(c, gin.H{
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

func (s *Server) orderFilterFromQuery(c *gin.Context) (orders.Filter, bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	storeID, ok := optionalUintQuery(c, "store_id")
	if !ok {
		return orders.Filter{}, false
	}
	customer, ok := optionalUintQuery(c, "customer_id")
	if !ok {
		return orders.Filter{}, false
	}
	dateFrom, dateTo, ok := dateRangeFromQuery(c)
	if !ok {
		return orders.Filter{}, false
	}

	filter := orders.Filter{
		StoreID:       storeID,
		Status:        models.OrderStatus(c.Query("status")),
		PaymentMethod: models.PaymentMethod(c.Query("payment_method")),
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		Page:          page,
		PageSize:      pageSize,
	}
	if customer != nil {
		filter.CustomerID = *customer
	}
	return filter, true
}

func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		httpx.BadRequest(c, "parameter "+name+" must be a positive integer")
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// dateRangeFromQuery accepts date_from/date_to either as RFC3339 or as a
// plain date; a plain date_to covers the whole day (inclusive bounds).
func dateRangeFromQuery(c *gin.Context) (*time.Time, *time.Time, bool) {
	parse := func(name string, endOfDay bool) (*time.Time, bool) {
		raw := c.Query(name)
		if raw == "" {
			return nil, true
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return &t, true
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.BadRequest(c, "parameter "+name+" must be a date or RFC3339 timestamp")
			return nil, false
		}
		if endOfDay {
			t = t.Add(24*time.Hour - time.Second)
		}
		return &t, true
	}

	from, ok := parse("date_from", false)
	if !ok {
		return nil, nil, false
	}
	to, ok := parse("date_to", true)
	if !ok {
		return nil, nil, false
	}
	return from, to, true
}
