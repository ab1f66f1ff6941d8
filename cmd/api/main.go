package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"ecommerce-api/internal/core/auth"
	"ecommerce-api/internal/core/cache"
	"ecommerce-api/internal/core/config"
	"ecommerce-api/internal/core/database"
	"ecommerce-api/internal/core/logger"
	"ecommerce-api/internal/core/server"
	"ecommerce-api/internal/events"
	"ecommerce-api/internal/repo"
	"ecommerce-api/internal/service"
	"ecommerce-api/internal/transport/http/router"
	"ecommerce-api/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := auth.NewJWTer(
		[]byte(cfg.JWT.Secret),
		cfg.JWT.Issuer,
		time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute,
		time.Duration(cfg.JWT.LeewaySec)*time.Second,
	)
	authSvc := service.NewAuthService(
		repo.NewUserRepo(db),
		utils.NewBcryptHasher(cfg.Auth.BcryptCost),
		jwter,
		log.Named("auth"),
	)

	productCache := openCache(cfg, log)
	if productCache != nil {
		defer productCache.Close()
	}
	publisher := openPublisher(cfg, log)
	defer publisher.Close()

	productSvc := service.NewProductService(repo.NewProductRepo(db), service.ProductOptions{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		Cache:        productCache,
		CacheTTL:     time.Duration(cfg.Redis.ProductTTL) * time.Second,
		Publisher:    publisher,
		Logger:       log.Named("product"),
	})

	r := router.NewAPIEngine(router.Deps{
		Log:          log,
		Auth:         authSvc,
		Products:     productSvc,
		Verifier:     jwter,
		MaxBodyBytes: cfg.App.HTTP.MaxBodyBytes,
		MaxInFlight:  cfg.App.HTTP.MaxInFlight,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("ecommerce api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.Bool("cache", productCache != nil),
		zap.Strings("kafka", cfg.Kafka.Brokers),
	)
	if err := server.Run(ctx, srv, time.Duration(cfg.App.HTTP.ShutdownSec)*time.Second, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
		return
	}
	log.Info("ecommerce api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Host:               cfg.DB.Host,
		Port:               cfg.DB.Port,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		Name:               cfg.DB.Name,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThresholdMs:    cfg.DB.SlowThresholdMs,
		Logger:             l.Named("gorm"),
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

// openCache redis 不可用时退化为直读数据库
func openCache(cfg *config.Config, l *zap.Logger) *cache.Cache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		l.Warn("redis unavailable, product cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	return c
}

func openPublisher(cfg *config.Config, l *zap.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.Nop{}
	}
	l.Info("product events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
}
