package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
)

// LogNotifier writes alerts to the log instead of delivering them. Used when
// Telegram is disabled.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) SendAlert(ctx context.Context, alert *domain.AlertPayload, fallback string) error {
	l.logger.Info("alert",
		zap.String("symbol", alert.Symbol),
		zap.String("direction", string(alert.Direction)),
		zap.Float64("entry", alert.Entry),
		zap.Float64("tp", alert.TP),
		zap.Float64("sl", alert.SL),
		zap.String("text", fallback))
	return nil
}

func (l *LogNotifier) SendText(ctx context.Context, text string) error {
	l.logger.Info("notification", zap.String("text", text))
	return nil
}
