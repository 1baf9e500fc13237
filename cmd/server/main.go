package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supplier-pricing-backend/internal/config"
	handler "supplier-pricing-backend/internal/handlers"
	"supplier-pricing-backend/internal/logging"
	"supplier-pricing-backend/internal/middleware"
	"supplier-pricing-backend/internal/routes"
	"supplier-pricing-backend/internal/services/pricing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	// Load .env
	config.LoadEnvFiles()

	cfg, err := config.Load(viper.New())
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logging.SetDefault(logger)

	svc := pricing.NewService(pricing.Options{
		BidMarkup:     cfg.BidMarkup,
		CatalogMarkup: cfg.CatalogMarkup,
		SessionTTL:    cfg.SessionTTL,
	}, logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", handler.SessionHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, svc, cfg)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}
