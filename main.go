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

	"finreport/config"
	"finreport/handler"
	"finreport/logger"
	"finreport/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	// `./finreport migrate` runs AutoMigrate and seeding then exits.
	// Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		cfg.DB.AutoMigrate = true
		if _, err := initDB(cfg); err != nil {
			logger.Log.Fatalf("migrate: %v", err)
		}
		fmt.Println("migration and seeding completed")
		return
	}

	db, err := initDB(cfg)
	if err != nil {
		logger.Log.Fatalf("database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go watchConfig(ctx, path)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: newRouter(cfg, db)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Log.Infof("listening on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("server: %v", err)
	}
}

func configPath() string {
	if v := os.Getenv("CONFIG_FILE"); v != "" {
		return v
	}
	return "config.yaml"
}

func newRouter(cfg config.Config, db *gorm.DB) *gin.Engine {
	svc := service.New(db)
	opts := handler.Options{CORSOrigins: cfg.CORS.AllowOrigins}
	if cfg.Auth.Enabled {
		ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
		opts.Auth = handler.NewAuth(svc.Users, []byte(cfg.Auth.JWTSecret), ttl)
	}
	if cfg.Server.Metrics {
		opts.Metrics = handler.NewMetrics()
	}
	return handler.NewRouter(svc, opts)
}

// watchConfig applies a changed log level without a restart. Other settings
// need one.
func watchConfig(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	err := config.Watch(ctx, path, func(cfg config.Config) {
		logger.SetLevel(cfg.Log.Level)
		logger.Log.Infof("config reloaded, log level %s", logger.Log.GetLevel())
	}, func(err error) {
		logger.Log.Warnf("config reload: %v", err)
	})
	if err != nil {
		logger.Log.Warnf("config watch stopped: %v", err)
	}
}
