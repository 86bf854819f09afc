package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/util"
)

type AdminCategoryHandler struct {
	DB *gorm.DB
}

// List returns every category, active or not, with product counts.
func (h *AdminCategoryHandler) List(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Order("sort_order ASC").Find(&categories).Error; err != nil {
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

func (h *AdminCategoryHandler) Create(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
		Image       string `json:"image"`
		IsActive    *bool  `json:"isActive"`
		SortOrder   int    `json:"sortOrder"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}
	if req.Name == "" || req.Slug == "" {
		return respondError(c, http.StatusBadRequest, "name and slug are required")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    isActive,
		SortOrder:   req.SortOrder,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		if isDuplicate(err) {
			return respondError(c, http.StatusBadRequest, "category with this slug already exists")
		}
		return serverError(c, err)
	}

	return respondData(c, http.StatusCreated, category)
}

func (h *AdminCategoryHandler) Get(c echo.Context) error {
	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return respondError(c, http.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "category not found")
		}
		return serverError(c, err)
	}

	var count int64
	if err := h.DB.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
		return serverError(c, err)
	}
	category.ProductCount = count

	return respondData(c, http.StatusOK, category)
}

func (h *AdminCategoryHandler) Update(c echo.Context) error {
	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return respondError(c, http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Name        *string `json:"name"`
		Slug        *string `json:"slug"`
		Description *string `json:"description"`
		Image       *string `json:"image"`
		IsActive    *bool   `json:"isActive"`
		SortOrder   *int    `json:"sortOrder"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "category not found")
		}
		return serverError(c, err)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Image != nil {
		category.Image = *req.Image
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := h.DB.Save(&category).Error; err != nil {
		if isDuplicate(err) {
			return respondError(c, http.StatusBadRequest, "category with this slug already exists")
		}
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, category)
}

// Delete refuses to remove a category that still has products.
func (h *AdminCategoryHandler) Delete(c echo.Context) error {
	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return respondError(c, http.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, http.StatusNotFound, "category not found")
		}
		return serverError(c, err)
	}

	var count int64
	if err := h.DB.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
		return serverError(c, err)
	}
	if count > 0 {
		return respondError(c, http.StatusBadRequest,
			fmt.Sprintf("cannot delete category with %d products", count))
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		return serverError(c, err)
	}

	return respondData(c, http.StatusOK, nil)
}
