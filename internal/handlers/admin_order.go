package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/mykafka"
	"github.com/craftroni/shop/internal/util"
)

type AdminOrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *AdminOrderHandler) List(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), adminPageSize)
	offset, limit := util.Paginate(page, size)

	q := h.DB.Model(&models.Order{})
	if status := c.QueryParam("status"); status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}
	if s := c.QueryParam("search"); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return serverError(c, err)
	}

	var orders []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, PagedResult{
		Items:      orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: util.TotalPages(total, limit),
	})
}

func (h *AdminOrderHandler) Get(c echo.Context) error {
	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return respondError(c, http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "order not found")
		}
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, order)
}

// Update changes status and/or notes. Moving to PAID stamps PaidAt.
func (h *AdminOrderHandler) Update(c echo.Context) error {
	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return respondError(c, http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	if req.Status != nil && !models.OrderStatus(*req.Status).Valid() {
		return respondError(c, http.StatusBadRequest, "invalid order status")
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "order not found")
		}
		return serverError(c, err)
	}

	previous := order.Status
	if req.Status != nil {
		order.Status = models.OrderStatus(*req.Status)
		if order.Status == models.OrderStatusPaid && order.PaidAt == nil {
			now := time.Now()
			order.PaidAt = &now
		}
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if err := h.DB.Omit("Items").Save(&order).Error; err != nil {
		return serverError(c, err)
	}

	if req.Status != nil && order.Status != previous {
		publish(c, h.Producer, "order_events", order.OrderNumber, map[string]interface{}{
			"type":        "order_status_changed",
			"orderNumber": order.OrderNumber,
			"from":        previous,
			"to":          order.Status,
		})
	}

	var updated models.Order
	if err := h.DB.Preload("Items").First(&updated, order.ID).Error; err != nil {
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, updated)
}
