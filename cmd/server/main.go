package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-blog/config"
	"social-blog/internal/handler"
	"social-blog/internal/model"
	"social-blog/internal/repository"
	"social-blog/internal/service"
	dbPkg "social-blog/pkg/db"
	"social-blog/pkg/jwt"
	"social-blog/pkg/lock"
	"social-blog/pkg/logger"
	redisPkg "social-blog/pkg/redis"
	"social-blog/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. config
	cfg := config.LoadConfig()

	// 2. logger
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== social-blog starting ===")
	log.Info("server configuration",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("lock_backend", cfg.Lock.Backend),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database
	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.Close(db); err != nil {
			log.Error("close database failed", zap.Error(err))
		}
	}()
	log.Info("database connected")

	// 3.1 schema
	if err := dbPkg.AutoMigrate(db, model.All()...); err != nil {
		log.Fatal("auto migrate failed", zap.Error(err))
	}
	log.Info("auto migrate finished")

	// 3.2 redis, lock backend and offline queue
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = redisPkg.NewClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		defer rdb.Close()
		log.Info("redis connected")
	}

	locker, err := newLocker(cfg.Lock, rdb)
	if err != nil {
		log.Fatal("lock backend unavailable", zap.Error(err))
	}

	var offline websocket.OfflineQueue
	if rdb != nil {
		offline = redisPkg.NewOfflineStore(rdb)
	}
	wsManager := websocket.NewManager(offline)

	// 3.3 services and handlers
	store := repository.NewStore(db)
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	userSvc := service.NewUserService(store, jwtSvc, service.LogMailer{}, cfg.App.FrontendURL)
	friendSvc := service.NewFriendshipService(store, locker, wsManager)
	reactionSvc := service.NewReactionService(store, locker, wsManager)
	blogSvc := service.NewBlogService(store)
	reviewSvc := service.NewReviewService(store)

	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return dbPkg.HealthCheck(db) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return redisPkg.HealthCheck(ctx, rdb) }
	}

	// 4. gin mode
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. router
	router := gin.New()
	router.Use(logger.LoggerMiddleware())
	router.Use(logger.ErrorLoggerMiddleware())

	// 6. routes
	handler.RegisterRoutes(router, handler.Handlers{
		User:      handler.NewUserHandler(userSvc),
		Friend:    handler.NewFriendHandler(friendSvc),
		Reaction:  handler.NewReactionHandler(reactionSvc),
		Blog:      handler.NewBlogHandler(blogSvc),
		Review:    handler.NewReviewHandler(reviewSvc),
		Health:    handler.NewHealthHandler(checks),
		WebSocket: websocket.ServeWS(wsManager, cfg.WebSocket),
	}, jwtSvc)

	// 7. http server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. serve
	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 9. graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}

// newLocker picks the per-key lock backend. The redis backend is required
// when more than one server process shares the database.
func newLocker(cfg config.LockConfig, rdb *redis.Client) (lock.Locker, error) {
	switch cfg.Backend {
	case "", "local":
		return lock.NewLocal(), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("lock backend redis requires redis.enabled")
		}
		return redisPkg.NewLocker(rdb, cfg), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Backend)
	}
}
