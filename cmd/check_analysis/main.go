package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/config"
	"github.com/dijiclick/pepebot/internal/domain"
	"github.com/dijiclick/pepebot/internal/infrastructure/analysis"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Testing Grok Interaction...")
	fmt.Printf("Endpoint: %s\n", cfg.Analysis.BaseURL)
	fmt.Printf("Model: %s\n", cfg.Analysis.Model)

	log, _ := zap.NewDevelopment()
	client := analysis.NewGrokClient(
		cfg.Analysis.BaseURL, cfg.Analysis.Model, cfg.Analysis.APIKey,
		cfg.AnalysisTimeout(), log)

	// A canned borderline support setup, just to exercise the round trip.
	verdict, err := client.AnalyzeTechnical(context.Background(), domain.TechnicalQuery{
		Symbol: cfg.Symbol,
		Price:  0.0000082,
		Layer: domain.Layer{
			PriceLevel:  0.00000819,
			Side:        domain.SideSupport,
			FactorCount: 3,
			TouchCount:  4,
			DistancePct: 0.08,
		},
		Snapshot: domain.IndicatorSnapshot{
			ATR14:       0.00000005,
			ADX:         18.0,
			Regime:      domain.RegimeRange,
			VolumeRatio: 1.4,
		},
		OHLCVNote: "14:00:00: O=0.00000820 H=0.00000822 L=0.00000818 C=0.00000821 (+0.12%)",
	})
	if err != nil {
		fmt.Printf("❌ Technical analysis failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Technical verdict received:")
	fmt.Printf("   Direction:  %s\n", verdict.Direction)
	fmt.Printf("   Confidence: %d%%\n", verdict.Confidence)
	fmt.Printf("   TP: %.8f  SL: %.8f\n", verdict.TP, verdict.SL)
	fmt.Printf("   Reason: %s\n", verdict.Reason)
}
