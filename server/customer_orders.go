package server

import (
	"strconv"

	"github.com/example/storehub/pkg/httpx"
	"github.com/example/storehub/pkg/models"
	"github.com/example/storehub/pkg/orders"
	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	AddressID     *uint              `json:"address_id"`
	StoreID       *uint              `json:"store_id"`
	Items         []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	TotalAmount   float64            `json:"total_amount" binding:"required,gt=0"`
	Notes         string             `json:"notes"`
	CouponCodes   []string           `json:"coupon_codes"`
}

type orderItemRequest struct {
	VariantID uint    `json:"variant_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	Price     float64 `json:"price" binding:"required,gt=0"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	items := make([]orders.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = orders.ItemInput{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	order, err := s.orders.Create(c.Request.Context(), orders.CreateInput{
		CustomerID:    customerID(c),
		AddressID:     req.AddressID,
		StoreID:       req.StoreID,
		Items:         items,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		TotalAmount:   req.TotalAmount,
		Notes:         req.Notes,
		CouponCodes:   req.CouponCodes,
	})
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.Created(c, s.orders.View(*order))
}

func (s *Server) listCustomerOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	results, total, err := s.orders.List(c.Request.Context(), orders.Filter{
		CustomerID: customerID(c),
		Page:       page,
		PageSize:   pageSize,
	})
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

func (s *Server) getCustomerOrder(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := s.orders.GetForCustomer(c.Request.Context(), id, customerID(c))
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.OK(c, s.orders.View(*order))
}

type cancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (s *Server) cancelOrder(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	order, err := s.orders.Cancel(c.Request.Context(), id, customerID(c), req.Reason)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.OKMessage(c, "order cancelled", s.orders.View(*order))
}

type returnOrderRequest struct {
	Reason string              `json:"reason" binding:"required"`
	Items  []orders.ReturnLine `json:"items" binding:"required,min=1"`
}

func (s *Server) returnOrder(c *gin.Context) {
	id, ok := httpx.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req returnOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	order, err := s.orders.Return(c.Request.Context(), id, customerID(c), req.Reason, req.Items)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.OKMessage(c, "return requested", s.orders.View(*order))
}
