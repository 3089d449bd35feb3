package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/config"
	"github.com/dijiclick/pepebot/internal/domain"
	"github.com/dijiclick/pepebot/internal/infrastructure/analysis"
	"github.com/dijiclick/pepebot/internal/infrastructure/exchange"
	"github.com/dijiclick/pepebot/internal/infrastructure/logger"
	"github.com/dijiclick/pepebot/internal/infrastructure/notifier"
	"github.com/dijiclick/pepebot/internal/infrastructure/storage"
	"github.com/dijiclick/pepebot/internal/metrics"
	"github.com/dijiclick/pepebot/internal/usecase"
	"github.com/dijiclick/pepebot/internal/web"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. Load Config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.Level, cfg.Logging.File)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
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

	// 4. Init Collaborators
	grok := analysis.NewGrokClient(
		cfg.Analysis.BaseURL, cfg.Analysis.Model, cfg.Analysis.APIKey,
		cfg.AnalysisTimeout(), log)

	formatter := notifier.NewFormatter(cfg.Trading.Leverage, cfg.Trading.RiskPercent)
	var notify domain.Notifier
	if cfg.Telegram.Enabled {
		notify = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, formatter, log)
	} else {
		notify = notifier.NewLogNotifier(log)
	}

	feed := exchange.NewBinanceFeed(
		cfg.Symbol, cfg.Exchange.Interval, cfg.Exchange.WindowSize,
		cfg.Exchange.RESTEndpoint, cfg.Exchange.WSEndpoint, log)

	// 5. Init Engine
	governor := usecase.NewCostGovernor(usecase.GovernorConfig{
		Cooldown:       cfg.Cooldown(),
		MaxCallsPerDay: cfg.Governor.MaxCallsPerDay,
		MaxSpendUSD:    cfg.Governor.MaxSpendUSD,
		MaxEscalations: cfg.Governor.MaxEscalations,
	}, store, log)

	funnel := usecase.NewDecisionFunnel(usecase.FunnelConfig{
		MinConfidence:    cfg.Engine.MinConfidence,
		HighConfidence:   cfg.Engine.HighConfidence,
		TechnicalCostUSD: cfg.Analysis.TechnicalCostUSD,
		SentimentCostUSD: cfg.Analysis.SentimentCostUSD,
		CallTimeout:      cfg.AnalysisTimeout(),
	}, governor, grok, log)

	dispatcher := usecase.NewDispatcher(usecase.DispatchConfig{
		Symbol:         cfg.Symbol,
		AccountBalance: cfg.Trading.AccountBalance,
		RiskPercent:    cfg.Trading.RiskPercent,
		Leverage:       cfg.Trading.Leverage,
	})

	service := usecase.NewSignalService(
		cfg.Symbol,
		cfg.Engine.ADXThreshold,
		usecase.NewLayerDetector(cfg.Engine.ClusterThresholdPct, cfg.Engine.AlignThresholdPct),
		usecase.NewProximityScanner(cfg.Engine.TriggerThresholdPct),
		governor,
		funnel,
		dispatcher,
		notify,
		store,
		metrics.New(),
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Backfill and Stream
	if err := feed.Backfill(ctx); err != nil {
		log.Fatal("Failed to backfill candles", zap.Error(err))
	}

	feed.OnWindow(func(candles []domain.Candle) {
		go func() {
			if err := service.ProcessWindow(ctx, candles); err != nil &&
				!errors.Is(err, domain.ErrInsufficientHistory) {
				log.Error("Error processing window", zap.Error(err))
			}
		}()
	})

	go func() {
		if err := feed.Stream(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Stream stopped", zap.Error(err))
			if sendErr := notify.SendText(ctx, formatter.FormatError(err)); sendErr != nil {
				log.Error("Failed to send error notice", zap.Error(sendErr))
			}
			cancel()
		}
	}()

	// 7. Daily usage summary shortly after midnight
	c := cron.New()
	if _, err := c.AddFunc("5 0 * * *", func() {
		day := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		usage, err := store.GetDailyUsage(ctx, day)
		if err != nil || usage == nil {
			log.Warn("No usage row for summary", zap.String("day", day), zap.Error(err))
			return
		}
		alerts := 0
		if signals, err := store.ListSignals(ctx, 500); err == nil {
			for _, s := range signals {
				if s.CreatedAt.Local().Format("2006-01-02") == day {
					alerts++
				}
			}
		}
		if err := notify.SendText(ctx, formatter.FormatDailySummary(*usage, alerts)); err != nil {
			log.Error("Failed to send daily summary", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("Failed to schedule daily summary", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	// 8. Web Server
	server := web.NewServer(cfg.Server.Port, service, store, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Error("Web server stopped", zap.Error(err))
		}
	}()

	if err := notify.SendText(ctx, formatter.FormatStartup(cfg.Symbol, cfg.Exchange.Interval)); err != nil {
		log.Warn("Failed to send startup message", zap.Error(err))
	}
	log.Info("Engine started",
		zap.String("symbol", cfg.Symbol),
		zap.String("interval", cfg.Exchange.Interval),
		zap.Int("window", cfg.Exchange.WindowSize))

	// 9. Wait for Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	cancel()
	feed.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Web server shutdown failed", zap.Error(err))
	}
}
