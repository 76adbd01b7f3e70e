package server

import (
	"github.com/example/storehub/pkg/httpx"
	"github.com/example/storehub/pkg/models"
	"github.com/gin-gonic/gin"
)

type addressRequest struct {
	Line1   string `json:"line1" binding:"required,max=200"`
	Line2   string `json:"line2" binding:"max=200"`
	City    string `json:"city" binding:"max=100"`
	Country string `json:"country" binding:"max=100"`
	Phone   string `json:"phone" binding:"max=20"`
}

func (s *Server) createAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	address := models.Address{
		CustomerID: customerID(c),
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		Country:    req.Country,
		Phone:      req.Phone,
	}
	if err := s.db.WithContext(c.Request.Context()).Create(&address).Error; err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.Created(c, address)
}

func (s *Server) listAddresses(c *gin.Context) {
	var addresses []models.Address
	err := s.db.WithContext(c.Request.Context()).
		Where("customer_id = ?", customerID(c)).
		Find(&addresses).Error
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	httpx.OK(c, addresses)
}
