package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/mykafka"
	"github.com/craftroni/shop/internal/search"
	"github.com/craftroni/shop/internal/util"
)

const adminPageSize = 20

type AdminProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Search   *search.Index
}

type imageRequest struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

func buildImages(images []imageRequest, fallbackAlt string) []models.ProductImage {
	out := make([]models.ProductImage, 0, len(images))
	for i, img := range images {
		alt := img.Alt
		if alt == "" {
			alt = fallbackAlt
		}
		out = append(out, models.ProductImage{
			URL:       img.URL,
			Alt:       alt,
			IsPrimary: i == 0,
			SortOrder: i,
		})
	}
	return out
}

func (h *AdminProductHandler) reindex(c echo.Context, p models.Product) {
	if !h.Search.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Search.IndexProduct(ctx, p); err != nil {
		c.Logger().Errorf("search index error: %v", err)
	}
}

func (h *AdminProductHandler) List(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), adminPageSize)
	offset, limit := util.Paginate(page, size)

	q := h.DB.Model(&models.Product{})
	if s := c.QueryParam("search"); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}
	if categoryID := util.ParseIntDefault(c.QueryParam("categoryId"), 0); categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return serverError(c, err)
	}

	var items []models.Product
	err := q.Preload("Category").Preload("Images", imagesSorted).
		Order("created_at DESC").Offset(offset).Limit(limit).
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

func (h *AdminProductHandler) Create(c echo.Context) error {
	var req struct {
		Name        string         `json:"name"`
		Slug        string         `json:"slug"`
		Description string         `json:"description"`
		Price       *float64       `json:"price"`
		SalePrice   *float64       `json:"salePrice"`
		SKU         string         `json:"sku"`
		Stock       int            `json:"stock"`
		CategoryID  uint           `json:"categoryId"`
		IsActive    *bool          `json:"isActive"`
		IsFeatured  bool           `json:"isFeatured"`
		Images      []imageRequest `json:"images"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}
	if req.Name == "" || req.Slug == "" || req.Price == nil || req.CategoryID == 0 {
		return respondError(c, http.StatusBadRequest, "name, slug, price and category are required")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := models.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       *req.Price,
		SKU:         req.SKU,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		IsActive:    isActive,
		IsFeatured:  req.IsFeatured,
		Images:      buildImages(req.Images, req.Name),
	}
	if req.SalePrice != nil && *req.SalePrice > 0 {
		product.SalePrice = req.SalePrice
	}

	if err := h.DB.Create(&product).Error; err != nil {
		if isDuplicate(err) {
			return respondError(c, http.StatusBadRequest, "product with this slug already exists")
		}
		return serverError(c, err)
	}

	h.reindex(c, product)
	publish(c, h.Producer, "product_events", product.Slug, map[string]interface{}{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	return respondData(c, http.StatusCreated, product)
}

func (h *AdminProductHandler) Get(c echo.Context) error {
	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return respondError(c, http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	err := h.DB.Preload("Category").Preload("Images", imagesSorted).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "product not found")
		}
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, product)
}

func (h *AdminProductHandler) Update(c echo.Context) error {
	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return respondError(c, http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Name        *string         `json:"name"`
		Slug        *string         `json:"slug"`
		Description *string         `json:"description"`
		Price       *float64        `json:"price"`
		SalePrice   *float64        `json:"salePrice"`
		SKU         *string         `json:"sku"`
		Stock       *int            `json:"stock"`
		CategoryID  *uint           `json:"categoryId"`
		IsActive    *bool           `json:"isActive"`
		IsFeatured  *bool           `json:"isFeatured"`
		Images      *[]imageRequest `json:"images"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "product not found")
		}
		return serverError(c, err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Slug != nil {
		product.Slug = *req.Slug
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.SalePrice != nil {
		// Zero clears the sale price.
		if *req.SalePrice > 0 {
			product.SalePrice = req.SalePrice
		} else {
			product.SalePrice = nil
		}
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Save(&product).Error; err != nil {
			return err
		}
		if req.Images != nil {
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
			images := buildImages(*req.Images, product.Name)
			for i := range images {
				images[i].ProductID = product.ID
			}
			if len(images) > 0 {
				if err := tx.Create(&images).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		if isDuplicate(txErr) {
			return respondError(c, http.StatusBadRequest, "product with this slug already exists")
		}
		return serverError(c, txErr)
	}

	var updated models.Product
	err := h.DB.Preload("Category").Preload("Images", imagesSorted).
		First(&updated, product.ID).Error
	if err != nil {
		return serverError(c, err)
	}

	h.reindex(c, updated)
	publish(c, h.Producer, "product_events", updated.Slug, map[string]interface{}{
		"type":      "product_updated",
		"productID": updated.ID,
		"name":      updated.Name,
	})

	return respondData(c, http.StatusOK, updated)
}

func (h *AdminProductHandler) Delete(c echo.Context) error {
	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return respondError(c, http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "product not found")
		}
		return serverError(c, err)
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if txErr != nil {
		return serverError(c, txErr)
	}

	if h.Search.Enabled() {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := h.Search.DeleteProduct(ctx, product.ID); err != nil {
			c.Logger().Errorf("search delete error: %v", err)
		}
	}
	publish(c, h.Producer, "product_events", product.Slug, map[string]interface{}{
		"type":      "product_deleted",
		"productID": product.ID,
	})

	return respondData(c, http.StatusOK, nil)
}
