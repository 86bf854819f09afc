package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/config"
	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/mykafka"
	"github.com/craftroni/shop/internal/ordernum"
	"github.com/craftroni/shop/internal/pricing"
)

// orderNumberAttempts bounds the retry loop when a generated order
// number collides with an existing one.
const orderNumberAttempts = 3

type OrderHandler struct {
	DB       *gorm.DB
	Settings config.ShopSettings
	Producer *mykafka.Producer
}

type orderItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerName    string             `json:"customerName"`
	CustomerPhone   string             `json:"customerPhone"`
	ShippingAddress string             `json:"shippingAddress"`
	ShippingCity    string             `json:"shippingCity"`
	ShippingZip     string             `json:"shippingZip"`
	Notes           string             `json:"notes"`
}

type stockError struct {
	name string
}

func (e stockError) Error() string {
	return fmt.Sprintf("not enough stock for %q", e.name)
}

// CreateOrder places an order. Prices come exclusively from the
// product rows fetched here; anything the client claims about prices
// is ignored.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	if len(req.Items) == 0 {
		return respondError(c, http.StatusBadRequest, "cart is empty")
	}
	if req.CustomerEmail == "" || req.CustomerName == "" ||
		req.ShippingAddress == "" || req.ShippingCity == "" || req.ShippingZip == "" {
		return respondError(c, http.StatusBadRequest, "missing required fields")
	}

	// Merge duplicate lines so one product cannot pass the stock check
	// twice.
	quantities := make(map[uint]int)
	for _, it := range req.Items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		quantities[it.ProductID] += it.Quantity
	}
	ids := make([]uint, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}

	var products []models.Product
	if err := h.DB.Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
		return serverError(c, err)
	}
	if len(products) != len(ids) {
		return respondError(c, http.StatusBadRequest, "some products do not exist")
	}

	lines := make([]pricing.Line, 0, len(products))
	for _, p := range products {
		lines = append(lines, pricing.Line{
			UnitPrice: p.Price,
			SalePrice: p.SalePrice,
			Quantity:  quantities[p.ID],
		})
	}
	totals := pricing.Calculate(lines, h.Settings.Pricing())

	newItems := func() []models.OrderItem {
		items := make([]models.OrderItem, 0, len(products))
		for _, p := range products {
			items = append(items, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     pricing.EffectivePrice(pricing.Line{UnitPrice: p.Price, SalePrice: p.SalePrice}),
				Quantity:  quantities[p.ID],
			})
		}
		return items
	}

	var order models.Order
	var txErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order = models.Order{
			OrderNumber:     ordernum.Generate(h.Settings.OrderPrefix),
			Status:          models.OrderStatusPending,
			CustomerEmail:   req.CustomerEmail,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			ShippingAddress: req.ShippingAddress,
			ShippingCity:    req.ShippingCity,
			ShippingZip:     req.ShippingZip,
			Notes:           req.Notes,
			Subtotal:        totals.Subtotal,
			ShippingCost:    totals.ShippingCost,
			Total:           totals.Total,
			Items:           newItems(),
		}

		txErr = h.DB.Transaction(func(tx *gorm.DB) error {
			for _, p := range products {
				qty := quantities[p.ID]
				res := tx.Model(&models.Product{}).
					Where("id = ? AND stock >= ?", p.ID, qty).
					UpdateColumn("stock", gorm.Expr("stock - ?", qty))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return stockError{name: p.Name}
				}
			}
			return tx.Create(&order).Error
		})

		// Only an order-number collision earns another attempt.
		if txErr == nil || !isDuplicate(txErr) {
			break
		}
	}

	if txErr != nil {
		var se stockError
		if errors.As(txErr, &se) {
			return respondError(c, http.StatusBadRequest, se.Error())
		}
		return serverError(c, txErr)
	}

	publish(c, h.Producer, "order_events", order.OrderNumber, map[string]interface{}{
		"type":        "order_created",
		"orderNumber": order.OrderNumber,
		"total":       order.Total,
		"items":       len(order.Items),
	})

	return respondData(c, http.StatusCreated, echo.Map{
		"order":      order,
		"paymentUrl": "/order/confirmation?order=" + order.OrderNumber,
	})
}

// GetOrder looks an order up by its human-readable number.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	number := c.QueryParam("orderNumber")
	if number == "" {
		return respondError(c, http.StatusBadRequest, "missing order number")
	}

	var order models.Order
	err := h.DB.Preload("Items").Where("order_number = ?", number).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "order not found")
		}
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, order)
}
