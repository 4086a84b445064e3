package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vitos/coin_tracker/internal/config"
	"github.com/vitos/coin_tracker/internal/domain"
	"github.com/vitos/coin_tracker/internal/infrastructure/logger"
	"github.com/vitos/coin_tracker/internal/infrastructure/paprika"
	"github.com/vitos/coin_tracker/internal/infrastructure/storage"
	"github.com/vitos/coin_tracker/internal/query"
	"github.com/vitos/coin_tracker/internal/usecase"
	"github.com/vitos/coin_tracker/internal/web"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init Coinpaprika client, audited
	client := paprika.NewClient(paprika.ClientConfig{
		BaseURL:           cfg.Paprika.BaseURL,
		IconBaseURL:       cfg.Paprika.IconBaseURL,
		Timeout:           cfg.PaprikaTimeout(),
		RequestsPerSecond: cfg.Paprika.RequestsPerSecond,
		Burst:             cfg.Paprika.Burst,
		Logger:            log,
	})
	source := usecase.NewAuditedSource(client, store, log)

	// 5. Init Cache and Service
	cache := query.NewCache(query.Config{
		TTL:          cfg.CacheTTL(),
		FailureTTL:   cfg.CacheFailureTTL(),
		FetchTimeout: cfg.PaprikaTimeout(),
	}, log)
	svc := usecase.NewCoinService(source, cache, usecase.ServiceConfig{
		ListLimit: cfg.Views.ListLimit,
		ChartDays: cfg.Views.ChartDays,
	}, log)

	// 6. Schedule audit log retention
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		log.Fatal("Failed to init scheduler", zap.Error(err))
	}
	retention := usecase.NewRetentionService(store, cfg.Retention(), log)
	if err := retention.Schedule(scheduler, cfg.Storage.PruneCron); err != nil {
		log.Fatal("Failed to schedule retention", zap.Error(err))
	}
	if _, err := retention.Prune(context.Background()); err != nil {
		log.Error("Initial prune failed", zap.Error(err))
	}
	scheduler.Start()

	// 7. Init Web Server
	theme := domain.ThemeByName(cfg.Views.Theme).WithAccent(cfg.Views.AccentColor)
	server, err := web.NewServer(cfg.Server.Port, svc, store, client, web.Options{
		RenderBudget:   cfg.RenderBudget(),
		RefreshSeconds: cfg.Server.RefreshSeconds,
		Theme:          theme,
	}, log)
	if err != nil {
		log.Fatal("Failed to init web server", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 8. Start Server
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 9. Wait for Shutdown
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Error("Scheduler shutdown failed", zap.Error(err))
	}
}
