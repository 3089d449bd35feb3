package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dijiclick/pepebot/internal/domain"
)

var (
	intRe   = regexp.MustCompile(`\d+`)
	floatRe = regexp.MustCompile(`[\d.]+`)
)

// parseTechnical extracts a stage-1 verdict from the KEY: value response.
// DIRECTION and CONFIDENCE are mandatory; a missing TP or SL falls back to
// entry plus or minus one ATR in the trade direction.
func parseTechnical(content string, price, atr float64) (*domain.TechnicalVerdict, error) {
	v := &domain.TechnicalVerdict{}
	haveDirection, haveConfidence := false, false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "DIRECTION:"):
			dir := domain.Side(strings.ToUpper(fieldValue(line)))
			if dir != domain.SideLong && dir != domain.SideShort && dir != domain.SideNone {
				return nil, fmt.Errorf("%w: direction %q", domain.ErrMalformedVerdict, fieldValue(line))
			}
			v.Direction = dir
			haveDirection = true
		case strings.HasPrefix(line, "CONFIDENCE:"):
			m := intRe.FindString(fieldValue(line))
			if m == "" {
				return nil, fmt.Errorf("%w: confidence %q", domain.ErrMalformedVerdict, fieldValue(line))
			}
			v.Confidence, _ = strconv.Atoi(m)
			haveConfidence = true
		case strings.HasPrefix(line, "TP:"):
			if m := floatRe.FindString(fieldValue(line)); m != "" {
				v.TP, _ = strconv.ParseFloat(m, 64)
			}
		case strings.HasPrefix(line, "SL:"):
			if m := floatRe.FindString(fieldValue(line)); m != "" {
				v.SL, _ = strconv.ParseFloat(m, 64)
			}
		case strings.HasPrefix(line, "REASON:"):
			v.Reason = fieldValue(line)
		}
	}

	if !haveDirection {
		return nil, fmt.Errorf("%w: missing DIRECTION", domain.ErrMalformedVerdict)
	}
	if !haveConfidence {
		return nil, fmt.Errorf("%w: missing CONFIDENCE", domain.ErrMalformedVerdict)
	}
	if v.Confidence < 0 || v.Confidence > 100 {
		return nil, fmt.Errorf("%w: confidence %d out of range", domain.ErrMalformedVerdict, v.Confidence)
	}

	if v.Direction != domain.SideNone {
		if v.TP == 0 {
			if v.Direction == domain.SideLong {
				v.TP = price + atr
			} else {
				v.TP = price - atr
			}
		}
		if v.SL == 0 {
			if v.Direction == domain.SideLong {
				v.SL = price - atr
			} else {
				v.SL = price + atr
			}
		}
	}
	return v, nil
}

// parseSentiment extracts a stage-2 verdict. TAKE_TRADE is mandatory; the
// remaining fields default to neutral when absent.
func parseSentiment(content string) (*domain.SentimentVerdict, error) {
	v := &domain.SentimentVerdict{
		Sentiment: domain.SentimentNeutral,
		BTCStatus: "FLAT",
	}
	haveTakeTrade := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "TAKE_TRADE:"):
			v.TakeTrade = strings.Contains(strings.ToUpper(fieldValue(line)), "YES")
			haveTakeTrade = true
		case strings.HasPrefix(line, "SENTIMENT:"):
			s := domain.Sentiment(strings.ToUpper(fieldValue(line)))
			if s == domain.SentimentBullish || s == domain.SentimentBearish || s == domain.SentimentNeutral {
				v.Sentiment = s
			}
		case strings.HasPrefix(line, "BUZZ_SCORE:"):
			if m := intRe.FindString(fieldValue(line)); m != "" {
				v.BuzzScore, _ = strconv.Atoi(m)
			}
		case strings.HasPrefix(line, "BTC_STATUS:"):
			status := strings.Fields(strings.ToUpper(fieldValue(line)))
			if len(status) > 0 {
				switch status[0] {
				case "UP", "DOWN", "FLAT":
					v.BTCStatus = status[0]
				}
			}
		case strings.HasPrefix(line, "WHALE_ALERT:"):
			v.WhaleAlert = strings.Contains(strings.ToUpper(fieldValue(line)), "YES")
		case strings.HasPrefix(line, "REASON:"):
			v.Reason = fieldValue(line)
		}
	}

	if !haveTakeTrade {
		return nil, fmt.Errorf("%w: missing TAKE_TRADE", domain.ErrMalformedVerdict)
	}
	return v, nil
}

func fieldValue(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}
