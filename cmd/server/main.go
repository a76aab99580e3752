package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kryptospire-dev/bot-dash/internal/common/cache"
	"github.com/kryptospire-dev/bot-dash/internal/common/config"
	"github.com/kryptospire-dev/bot-dash/internal/common/logger"
	"github.com/kryptospire-dev/bot-dash/internal/common/middleware"
	authhttp "github.com/kryptospire-dev/bot-dash/internal/features/auth/delivery/http"
	authservice "github.com/kryptospire-dev/bot-dash/internal/features/auth/service"
	userhttp "github.com/kryptospire-dev/bot-dash/internal/features/user/delivery/http"
	usermongo "github.com/kryptospire-dev/bot-dash/internal/features/user/repository/mongodb"
	userservice "github.com/kryptospire-dev/bot-dash/internal/features/user/service"
	"github.com/kryptospire-dev/bot-dash/internal/platform/mongodb"
	"github.com/kryptospire-dev/bot-dash/internal/platform/redis"
)

// @title           MinatiVault Admin API
// @version         1.0
// @description     Admin console backend for the MNTC reward bot: user list, payout status, referral releases, duplicate-account cleanup.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey AdminSession
// @in header
// @name Authorization
// @description Bearer session token from /auth/login

func main() {
	cfg := config.Load()

	logger.Init("minativault", cfg.Debug)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongodb.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("MongoDB disconnect failed")
		}
	}()

	redisClient, err := redis.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	cacheService := cache.New(redisClient)

	userRepo := usermongo.NewUserRepository(mongoClient)
	userSvc := userservice.NewUserService(userRepo, cacheService, cfg)
	authSvc := authservice.NewAuthService(cacheService, cfg)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		cors.New(cors.Config{
			AllowOrigins:     []string{cfg.Server.Origin},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	api := router.Group("/api/v1")
	authhttp.NewAuthHandler(authSvc).RegisterRoutes(api)
	userhttp.NewUserHandler(userSvc).RegisterRoutes(api, authSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}
