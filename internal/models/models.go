package models

import (
	"time"
)

const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:CUSTOMER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session mirrors an issued session token so it can be revoked before
// its embedded expiry.
type Session struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"index;not null"       json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null"     json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	IsActive    bool      `gorm:"default:true"             json:"is_active"`
	SortOrder   int       `gorm:"default:0"                json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Filled by handlers, not stored.
	ProductCount int64 `gorm:"-" json:"product_count"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null"     json:"slug"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"                 json:"price"`
	SalePrice   *float64  `json:"sale_price"`
	SKU         string    `json:"sku"`
	Stock       int       `gorm:"default:0"                json:"stock"`
	IsActive    bool      `gorm:"default:true"             json:"is_active"`
	IsFeatured  bool      `gorm:"default:false"            json:"is_featured"`
	CategoryID  uint      `gorm:"index;not null"           json:"category_id"`
	Category    *Category `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Images []ProductImage `json:"images"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"index;not null"           json:"product_id"`
	URL       string `gorm:"not null"                 json:"url"`
	Alt       string `json:"alt"`
	IsPrimary bool   `gorm:"default:false"            json:"is_primary"`
	SortOrder int    `gorm:"default:0"                json:"sort_order"`
}

type Order struct {
	ID              uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string      `gorm:"uniqueIndex;not null"     json:"order_number"`
	Status          OrderStatus `gorm:"not null;default:PENDING" json:"status"`
	CustomerEmail   string      `gorm:"not null"                 json:"customer_email"`
	CustomerName    string      `gorm:"not null"                 json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	ShippingAddress string      `gorm:"not null"                 json:"shipping_address"`
	ShippingCity    string      `gorm:"not null"                 json:"shipping_city"`
	ShippingZip     string      `gorm:"not null"                 json:"shipping_zip"`
	Subtotal        float64     `gorm:"not null"                 json:"subtotal"`
	ShippingCost    float64     `gorm:"not null"                 json:"shipping_cost"`
	Total           float64     `gorm:"not null"                 json:"total"`
	PaymentMethod   string      `json:"payment_method"`
	PaymentID       string      `json:"payment_id"`
	PaidAt          *time.Time  `json:"paid_at"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	Items []OrderItem `json:"items"`
}

// OrderItem snapshots name and unit price at purchase time so later
// product edits do not rewrite order history.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"order_id"`
	ProductID uint    `gorm:"index;not null"           json:"product_id"`
	Name      string  `gorm:"not null"                 json:"name"`
	Price     float64 `gorm:"not null"                 json:"price"`
	Quantity  int     `gorm:"not null"                 json:"quantity"`
}

// Setting is a key-value row of shop configuration. Typed access goes
// through config.LoadShopSettings.
type Setting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `gorm:"not null"   json:"value"`
}
