package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/craftroni/shop/internal/config"
	"github.com/craftroni/shop/internal/es"
	"github.com/craftroni/shop/internal/handlers"
	"github.com/craftroni/shop/internal/logging"
	"github.com/craftroni/shop/internal/mykafka"
	"github.com/craftroni/shop/internal/search"
	"github.com/craftroni/shop/internal/session"
	httpserver "github.com/craftroni/shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	settings, err := config.LoadShopSettings(db)
	if err != nil {
		log.Fatalf("shop settings error: %v", err)
	}

	producer := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch error: %v", err)
	}
	index := search.NewIndex(esClient, search.DefaultIndex)

	sessions := session.NewManager(db, configuration.JWT_SECRET, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions.StartSweeper(ctx, time.Hour)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB:              db,
		Sessions:        sessions,
		Auth:            &handlers.AuthHandler{DB: db, Sessions: sessions, Producer: producer},
		Products:        &handlers.ProductHandler{DB: db},
		Categories:      &handlers.CategoryHandler{DB: db},
		Orders:          &handlers.OrderHandler{DB: db, Settings: settings, Producer: producer},
		Search:          &handlers.SearchHandler{Index: index},
		AdminProducts:   &handlers.AdminProductHandler{DB: db, Producer: producer, Search: index},
		AdminCategories: &handlers.AdminCategoryHandler{DB: db},
		AdminOrders:     &handlers.AdminOrderHandler{DB: db, Producer: producer},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
