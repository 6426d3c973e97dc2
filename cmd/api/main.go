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

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/apollo"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/auth"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/config"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/database"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/handler"
	middlewarepkg "github.com/techiemaya-admin/lad-feature-apollo-leads/internal/middleware"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/repository"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/router"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	employeesRepo := repository.NewPGXEmployeesRepository(pool)
	searchCacheRepo := repository.NewPGXSearchCacheRepository(pool)

	providerClient := apollo.NewClient(&http.Client{Timeout: 120 * time.Second}, cfg.ApolloBaseURL, cfg.ApolloAPIKey)

	leadsService := service.NewLeadsService(employeesRepo, searchCacheRepo, providerClient, nil, service.Options{
		APIKey:        cfg.ApolloAPIKey,
		WebhookURL:    cfg.WebhookURL,
		WebhookToken:  cfg.WebhookToken,
		Production:    cfg.Production,
		DefaultSchema: cfg.DefaultSchema,
		Costs: service.Costs{
			RevealEmail: cfg.Costs.RevealEmail,
			RevealPhone: cfg.Costs.RevealPhone,
			Search:      cfg.Costs.Search,
		},
	})

	handlers := router.Handlers{
		Reveal:  handler.NewRevealHandler(leadsService),
		Search:  handler.NewSearchHandler(leadsService),
		Webhook: handler.NewWebhookHandler(leadsService),
		Admin:   handler.NewAdminHandler(employeesRepo),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
