package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "familytrip/internal/config"
	router "familytrip/internal/http"
	"familytrip/internal/http/handlers"
	"familytrip/internal/http/middleware"
	"familytrip/internal/llm"
	"familytrip/internal/repositories"
	"familytrip/internal/telemetry"
	"familytrip/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	_, logCloser := utils.InitLogger(env.LogFile, slog.LevelInfo)
	defer logCloser.Close()

	if env.TelemetryEnabled {
		shutdown, err := telemetry.Init(context.Background(), env.TelemetryDir)
		if err != nil {
			slog.Warn("telemetry disabled", "error", err)
		} else {
			defer shutdown()
		}
	}

	if _, err := intconfig.ConnectDB(env); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer intconfig.CloseDB()

	if env.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := repositories.TripsRepository{}.EnsureSchema(ctx)
		cancel()
		if err != nil {
			slog.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
	}

	provider, err := llm.New(env)
	if err != nil {
		slog.Warn("chat provider unavailable", "error", err)
		provider = llm.Unavailable{Reason: err}
	}
	handlers.SetProvider(provider, env.LLMMaxTokens, env.LLMTemperature)

	auth := middleware.NewAuthenticator(env.AuthJWTSecret, env.AuthCookieName, env.AuthAudience)
	if env.AuthJWTSecret == "" {
		slog.Warn("AUTH_JWT_SECRET not set; every request is anonymous")
	}

	r := router.NewRouter(env, auth)

	// WriteTimeout stays unset; chat responses stream until the model finishes.
	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", env.AppAddr, "provider", provider.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		return
	}

	slog.Info("server stopped")
}
