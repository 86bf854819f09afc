package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/craftroni/shop/internal/handlers"
	"github.com/craftroni/shop/internal/session"
)

type Deps struct {
	DB              *gorm.DB
	Sessions        *session.Manager
	Auth            *handlers.AuthHandler
	Products        *handlers.ProductHandler
	Categories      *handlers.CategoryHandler
	Orders          *handlers.OrderHandler
	Search          *handlers.SearchHandler
	AdminProducts   *handlers.AdminProductHandler
	AdminCategories *handlers.AdminCategoryHandler
	AdminOrders     *handlers.AdminOrderHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	api.POST("/auth", d.Auth.Login)
	api.DELETE("/auth", d.Auth.Logout)
	api.GET("/auth/me", d.Auth.Me)

	api.GET("/products", d.Products.ListProducts)
	api.GET("/products/:slug", d.Products.GetProduct)
	api.GET("/categories", d.Categories.ListCategories)
	api.GET("/search", d.Search.Search)

	api.POST("/orders", d.Orders.CreateOrder)
	api.GET("/orders", d.Orders.GetOrder)

	admin := api.Group("/admin", d.Sessions.RequireAdmin)

	admin.GET("/products", d.AdminProducts.List)
	admin.POST("/products", d.AdminProducts.Create)
	admin.GET("/products/:id", d.AdminProducts.Get)
	admin.PUT("/products/:id", d.AdminProducts.Update)
	admin.DELETE("/products/:id", d.AdminProducts.Delete)

	admin.GET("/categories", d.AdminCategories.List)
	admin.POST("/categories", d.AdminCategories.Create)
	admin.GET("/categories/:id", d.AdminCategories.Get)
	admin.PUT("/categories/:id", d.AdminCategories.Update)
	admin.DELETE("/categories/:id", d.AdminCategories.Delete)

	admin.GET("/orders", d.AdminOrders.List)
	admin.GET("/orders/:id", d.AdminOrders.Get)
	admin.PUT("/orders/:id", d.AdminOrders.Update)
}
