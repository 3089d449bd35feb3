package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier sends messages via the Telegram Bot API in HTML parse
// mode. When Telegram rejects the formatted alert the plain-text fallback is
// sent instead, so a formatting bug never swallows a signal.
type TelegramNotifier struct {
	botToken  string
	chatID    string
	apiBase   string
	formatter *Formatter
	client    *http.Client
	logger    *zap.Logger
}

func NewTelegramNotifier(botToken, chatID string, formatter *Formatter, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		botToken:  botToken,
		chatID:    chatID,
		apiBase:   telegramAPIBase,
		formatter: formatter,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// SendAlert delivers a formatted trade alert.
func (t *TelegramNotifier) SendAlert(ctx context.Context, alert *domain.AlertPayload, fallback string) error {
	if err := t.send(ctx, t.formatter.FormatAlert(alert), "HTML"); err != nil {
		t.logger.Warn("formatted alert rejected, sending fallback", zap.Error(err))
		return t.send(ctx, fallback, "")
	}
	return nil
}

// SendText delivers a raw HTML message such as the startup banner.
func (t *TelegramNotifier) SendText(ctx context.Context, text string) error {
	return t.send(ctx, text, "HTML")
}

func (t *TelegramNotifier) send(ctx context.Context, text, parseMode string) error {
	payload := map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
