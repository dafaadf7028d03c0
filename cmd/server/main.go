package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"chat_backend/internal/app/di"
	"chat_backend/internal/app/router"
	authhandler "chat_backend/internal/feature/auth/transport/handler"
	authusecase "chat_backend/internal/feature/auth/usecase"
	"chat_backend/internal/platform/config"
	jwtmw "chat_backend/internal/platform/jwt"
	"chat_backend/internal/platform/logger"
	"chat_backend/internal/platform/password"
	infraredis "chat_backend/internal/platform/redis"
)

func main() {
	// 設定（JWT_SECRET未設定の場合は起動しない）
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis（任意）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// Repository
	userRepo, closeStore, err := di.NewUserRepository(ctx, cfg, rdb)
	if err != nil {
		slog.Error("failed to open user store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	uploader, err := di.NewImageUploader(ctx, cfg)
	if err != nil {
		slog.Error("failed to configure image host", "error", err)
		os.Exit(1)
	}

	tokens, err := jwtmw.NewGenerator(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		slog.Error("failed to configure token issuer", "error", err)
		os.Exit(1)
	}

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, password.NewBcryptHasher(password.DefaultCost), tokens, uploader)

	// Handler
	cookie := jwtmw.NewSessionCookie(tokens.Expiration(), cfg.SecureCookies())
	authH := authhandler.NewAuthHandler(authUC, cookie, jwtmw.CurrentUser)

	// ルータ生成
	r := router.NewRouter(authH, jwtmw.AuthRequired(jwtmw.CookieName, tokens, authUC), cfg.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
