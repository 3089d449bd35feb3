package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dijiclick/pepebot/internal/domain"
)

// Formatter renders trade alerts and service messages as Telegram HTML.
type Formatter struct {
	Leverage    int
	RiskPercent float64
}

func NewFormatter(leverage int, riskPercent float64) *Formatter {
	return &Formatter{Leverage: leverage, RiskPercent: riskPercent}
}

// FormatAlert renders an alert payload. Sentiment-confirmed alerts carry the
// stage-2 breakdown; direct high-confidence alerts only the technical line.
func (f *Formatter) FormatAlert(a *domain.AlertPayload) string {
	emoji := "🟢"
	if a.Direction == domain.SideShort {
		emoji = "🔴"
	}
	title := fmt.Sprintf("%s <b>%s SIGNAL</b>", emoji, a.Direction)
	if a.Sentiment != nil {
		title += " (X Confirmed)"
	}

	tpPct, slPct := 0.0, 0.0
	if a.Entry != 0 {
		tpPct = math.Abs(a.TP-a.Entry) / a.Entry * 100
		slPct = math.Abs(a.SL-a.Entry) / a.Entry * 100
	}

	regimeEmoji := "🟢"
	if a.Snapshot.Regime == domain.RegimeTrend {
		regimeEmoji = "🟠"
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	fmt.Fprintf(&b, "%s | %dx Isolated\n\n", a.Symbol, f.Leverage)
	fmt.Fprintf(&b, "<b>Entry:</b>  %.8f\n", a.Entry)
	fmt.Fprintf(&b, "<b>TP:</b>     %.8f (+%.2f%%)\n", a.TP, tpPct)
	fmt.Fprintf(&b, "<b>SL:</b>     %.8f (-%.2f%%)\n", a.SL, slPct)
	fmt.Fprintf(&b, "<b>Size:</b>   $%.2f (%.1f%% risk)\n\n", a.Size, f.RiskPercent)
	fmt.Fprintf(&b, "<b>Layer:</b> %s %.8f (%d factors, %d touches)\n",
		a.Layer.Side, a.Layer.PriceLevel, a.Layer.FactorCount, a.Layer.TouchCount)
	fmt.Fprintf(&b, "<b>Market:</b> %s %s (ADX: %.1f)\n\n", regimeEmoji, a.Snapshot.Regime, a.Snapshot.ADX)

	b.WriteString("🤖 <b>Grok Analysis</b>\n")
	if a.Sentiment != nil {
		whale := "NO"
		if a.Sentiment.WhaleAlert {
			whale = "YES"
		}
		fmt.Fprintf(&b, "• Technical: %d%%\n", a.Technical.Confidence)
		fmt.Fprintf(&b, "• Sentiment: %s (buzz: %d)\n", a.Sentiment.Sentiment, a.Sentiment.BuzzScore)
		fmt.Fprintf(&b, "• BTC: %s\n", a.Sentiment.BTCStatus)
		fmt.Fprintf(&b, "• Whale Alert: %s\n", whale)
	} else {
		fmt.Fprintf(&b, "• Confidence: %d%% (technical)\n", a.Technical.Confidence)
	}
	fmt.Fprintf(&b, "• Reason: %s\n\n", a.Technical.Reason)

	fmt.Fprintf(&b, "⏱ %s UTC", a.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	return b.String()
}

// FormatStartup renders the banner sent when the engine comes up.
func (f *Formatter) FormatStartup(symbol, interval string) string {
	var b strings.Builder
	b.WriteString("🚀 <b>Scalping Engine Started</b>\n\n")
	fmt.Fprintf(&b, "Monitoring: %s\n", symbol)
	fmt.Fprintf(&b, "Timeframe: %s\n", interval)
	fmt.Fprintf(&b, "Leverage: %dx\n", f.Leverage)
	fmt.Fprintf(&b, "Max Risk: %.1f%% per trade\n\n", f.RiskPercent)
	b.WriteString("Watching for bounce layer setups...\n\n")
	fmt.Fprintf(&b, "⏱ %s UTC", time.Now().UTC().Format("2006-01-02 15:04:05"))
	return b.String()
}

// FormatError renders a fatal-error notice.
func (f *Formatter) FormatError(err error) string {
	return fmt.Sprintf("⚠️ <b>Engine Error</b>\n\n%s\n\n⏱ %s UTC",
		err, time.Now().UTC().Format("2006-01-02 15:04:05"))
}

// FormatDailySummary renders the end-of-day usage report.
func (f *Formatter) FormatDailySummary(u domain.DailyUsage, alerts int) string {
	var b strings.Builder
	b.WriteString("📊 <b>Daily Summary</b>\n\n")
	fmt.Fprintf(&b, "Day: %s\n", u.Day)
	fmt.Fprintf(&b, "Analysis calls: %d\n", u.Calls)
	fmt.Fprintf(&b, "Escalations: %d\n", u.Escalations)
	fmt.Fprintf(&b, "Spend: $%.4f\n", u.SpendUSD)
	fmt.Fprintf(&b, "Alerts: %d\n", alerts)
	return b.String()
}
