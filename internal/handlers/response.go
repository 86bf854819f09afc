package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/mykafka"
)

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PagedResult wraps list endpoints.
type PagedResult struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int64       `json:"total_pages"`
}

func respondData(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, Response{Success: true, Data: data})
}

func respondError(c echo.Context, code int, msg string) error {
	return c.JSON(code, Response{Success: false, Error: msg})
}

func serverError(c echo.Context, err error) error {
	c.Logger().Errorf("internal error: %v", err)
	return respondError(c, http.StatusInternalServerError, "internal server error")
}

// isDuplicate recognizes unique-constraint violations across the
// postgres and sqlite dialects.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// publish sends a shop event, best effort. Delivery problems are
// logged and never fail the request.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]interface{}) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}
