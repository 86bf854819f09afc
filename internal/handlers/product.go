package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/util"
)

// ProductHandler serves the public storefront catalog. Only active
// products are ever visible here; the admin surface has its own view.
type ProductHandler struct {
	DB *gorm.DB
}

func imagesSorted(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Paginate(page, size)

	q := h.DB.Model(&models.Product{}).Where("products.is_active = ?", true)

	if category := c.QueryParam("category"); category != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", category)
	}
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", pattern, pattern)
	}
	if c.QueryParam("featured") == "true" {
		q = q.Where("products.is_featured = ?", true)
	}

	// Unrecognized sort keys fall back to newest.
	var order string
	switch c.QueryParam("sort") {
	case "price-asc":
		order = "products.price ASC"
	case "price-desc":
		order = "products.price DESC"
	case "name-asc":
		order = "products.name ASC"
	case "oldest":
		order = "products.created_at ASC"
	default:
		order = "products.created_at DESC"
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return serverError(c, err)
	}

	var items []models.Product
	err := q.Preload("Category").Preload("Images", imagesSorted).
		Order(order).Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, PagedResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: util.TotalPages(total, limit),
	})
}

// GetProduct returns a product by slug plus up to four related
// products from the same category.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	slug := c.Param("slug")

	var product models.Product
	err := h.DB.Preload("Category").Preload("Images", imagesSorted).
		Where("slug = ?", slug).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "product not found")
		}
		return serverError(c, err)
	}

	var related []models.Product
	err = h.DB.Preload("Images", imagesSorted).
		Where("category_id = ? AND id <> ? AND is_active = ?", product.CategoryID, product.ID, true).
		Limit(4).Find(&related).Error
	if err != nil {
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, echo.Map{
		"product":         product,
		"relatedProducts": related,
	})
}
