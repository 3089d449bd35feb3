package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/config"
	"github.com/dijiclick/pepebot/internal/infrastructure/notifier"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Telegram.Enabled {
		fmt.Println("Telegram is disabled in config")
		os.Exit(1)
	}

	fmt.Println("Testing Telegram Interaction...")
	fmt.Printf("Chat ID: %s\n", cfg.Telegram.ChatID)

	log, _ := zap.NewDevelopment()
	formatter := notifier.NewFormatter(cfg.Trading.Leverage, cfg.Trading.RiskPercent)
	tg := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, formatter, log)

	msg := "🧪 <b>Test Message</b>\n\nIf you can read this, the bot token and chat id are good."
	if err := tg.SendText(context.Background(), msg); err != nil {
		fmt.Printf("❌ Failed to send message: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Message delivered")
}
