package config

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/models"
	"github.com/craftroni/shop/internal/pricing"
)

// ShopSettings is the typed view over the settings key-value table.
// Loaded once at startup; unknown or malformed rows keep the default.
type ShopSettings struct {
	Currency              string
	FreeShippingThreshold float64
	DefaultShippingCost   float64
	OrderPrefix           string
}

func DefaultShopSettings() ShopSettings {
	return ShopSettings{
		Currency:              "PLN",
		FreeShippingThreshold: 200,
		DefaultShippingCost:   15,
		OrderPrefix:           "CR",
	}
}

func LoadShopSettings(db *gorm.DB) (ShopSettings, error) {
	s := DefaultShopSettings()

	var rows []models.Setting
	if err := db.Find(&rows).Error; err != nil {
		return s, err
	}

	for _, row := range rows {
		switch row.Key {
		case "currency":
			if row.Value != "" {
				s.Currency = row.Value
			}
		case "free_shipping_threshold":
			if v, err := strconv.ParseFloat(row.Value, 64); err == nil && v >= 0 {
				s.FreeShippingThreshold = v
			}
		case "default_shipping_cost":
			if v, err := strconv.ParseFloat(row.Value, 64); err == nil && v >= 0 {
				s.DefaultShippingCost = v
			}
		case "order_prefix":
			if row.Value != "" {
				s.OrderPrefix = row.Value
			}
		}
	}

	return s, nil
}

func (s ShopSettings) Pricing() pricing.Config {
	return pricing.Config{
		FreeShippingThreshold: s.FreeShippingThreshold,
		DefaultShippingCost:   s.DefaultShippingCost,
	}
}
