package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/models"
)

type CategoryHandler struct {
	DB *gorm.DB
}

type categoryCount struct {
	CategoryID uint
	Count      int64
}

func productCounts(db *gorm.DB) (map[uint]int64, error) {
	var rows []categoryCount
	err := db.Model(&models.Product{}).
		Select("category_id, COUNT(*) as count").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	return counts, nil
}

// ListCategories returns active categories in sort order with their
// product counts.
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	var categories []models.Category
	err := h.DB.Where("is_active = ?", true).Order("sort_order ASC").Find(&categories).Error
	if err != nil {
		return serverError(c, err)
	}

	counts, err := productCounts(h.DB)
	if err != nil {
		return serverError(c, err)
	}
	for i := range categories {
		categories[i].ProductCount = counts[categories[i].ID]
	}

	return respondData(c, http.StatusOK, categories)
}
