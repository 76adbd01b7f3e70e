package models

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
)

type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "CARD"
	PaymentMpesaExpress PaymentMethod = "MPESAEXPRESS"
	PaymentPaybill      PaymentMethod = "PAYBILL"
	PaymentPaypal       PaymentMethod = "PAYPAL"
	PaymentCOD          PaymentMethod = "COD"
	PaymentOther        PaymentMethod = "OTHER"
)

type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"type:varchar(24);uniqueIndex;not null" json:"order_number"`
	CustomerID    uint          `gorm:"not null;index" json:"customer_id"`
	AddressID     *uint         `gorm:"index" json:"address_id,omitempty"`
	StoreID       *uint         `gorm:"index" json:"store_id,omitempty"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	TotalAmount   float64       `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	Paid          bool          `gorm:"not null;default:false" json:"paid"`
	Notes         string        `gorm:"type:text" json:"notes"`
	// CouponCodes is a comma-joined snapshot of the codes applied at
	// placement time.
	CouponCodes string         `gorm:"type:varchar(200)" json:"coupon_codes,omitempty"`
	PlacedAt    time.Time      `gorm:"not null;index" json:"placed_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem captures quantity and unit price at order time; the price is a
// snapshot, never a live variant lookup.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	VariantID uint      `gorm:"not null;index" json:"variant_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderReturn and OrderReturnItem persist return requests as first-class
// rows instead of serializing them into the order notes.
type OrderReturn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	Reason      string    `gorm:"type:text;not null" json:"reason"`
	RequestedAt time.Time `gorm:"not null" json:"requested_at"`

	Items []OrderReturnItem `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (OrderReturn) TableName() string {
	return "order_returns"
}

type OrderReturnItem struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	ReturnID    uint `gorm:"not null;index" json:"return_id"`
	OrderItemID uint `gorm:"not null;index" json:"order_item_id"`
	Quantity    int  `gorm:"not null" json:"quantity"`
}

func (OrderReturnItem) TableName() string {
	return "order_return_items"
}
