package usecase_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dijiclick/pepebot/internal/domain"
	"github.com/dijiclick/pepebot/internal/usecase"
)

// supportWindow builds 60 one-minute candles trading flat around 100.05
// with swing-low touches at 99.95 on the given bar indices.
func supportWindow(touchIndices ...int) []domain.Candle {
	touches := make(map[int]bool)
	for _, i := range touchIndices {
		touches[i] = true
	}
	candles := make([]domain.Candle, 60)
	for i := range candles {
		c := domain.Candle{
			OpenTime: int64(i) * 60000,
			Open:     100.05, High: 100.1, Low: 100.0, Close: 100.05,
			Volume: 10,
		}
		if touches[i] {
			c.Low = 99.95
		}
		candles[i] = c
	}
	return candles
}

func TestLayerDetector_InsufficientHistory(t *testing.T) {
	d := usecase.NewLayerDetector(0, 0)
	_, err := d.Detect(supportWindow()[:10])
	if !errors.Is(err, domain.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestLayerDetector_SupportCluster(t *testing.T) {
	d := usecase.NewLayerDetector(0, 0)
	layers, err := d.Detect(supportWindow(10, 20, 30, 45))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(layers) != 1 {
		t.Fatalf("expected 1 layer, got %d: %+v", len(layers), layers)
	}

	l := layers[0]
	if l.Side != domain.SideSupport {
		t.Errorf("expected SUPPORT, got %s", l.Side)
	}
	if l.TouchCount != 4 {
		t.Errorf("expected 4 touches, got %d", l.TouchCount)
	}
	if l.FactorCount < 2 {
		t.Errorf("retained layer must have factor_count >= 2, got %d", l.FactorCount)
	}
	// One touch in the last 20 bars (index 45) weighs double: 3*1 + 1*2.
	if l.RecencyWeight != 5 {
		t.Errorf("expected recency weight 5, got %f", l.RecencyWeight)
	}
}

func TestLayerDetector_SingleTouchDiscarded(t *testing.T) {
	d := usecase.NewLayerDetector(0, 0)
	layers, err := d.Detect(supportWindow(30))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	for _, l := range layers {
		if l.TouchCount < 2 {
			t.Errorf("layer with %d touches must be discarded: %+v", l.TouchCount, l)
		}
	}
}

func TestLayerDetector_InvariantsOnBusyWindow(t *testing.T) {
	// Several distinct levels: swing lows at three prices plus swing highs.
	candles := make([]domain.Candle, 60)
	for i := range candles {
		candles[i] = domain.Candle{
			OpenTime: int64(i) * 60000,
			Open:     100.0, High: 100.2, Low: 99.8, Close: 100.0,
			Volume: 10,
		}
	}
	lowTouches := map[int]float64{
		5: 99.5, 15: 99.5, // level A
		10: 99.2, 25: 99.2, // level B
		35: 99.65, 45: 99.65, // level C
	}
	highTouches := map[int]float64{
		8: 100.6, 20: 100.6, // level D
		30: 100.9, 50: 100.9, // level E
	}
	for i, p := range lowTouches {
		candles[i].Low = p
	}
	for i, p := range highTouches {
		candles[i].High = p
	}

	d := usecase.NewLayerDetector(0, 0)
	layers, err := d.Detect(candles)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(layers) > 4 {
		t.Fatalf("never more than 4 layers, got %d", len(layers))
	}
	pocCount := 0
	for _, l := range layers {
		if l.FactorCount < 2 {
			t.Errorf("confluence floor violated: %+v", l)
		}
		if l.IsPOC {
			pocCount++
		}
	}
	if pocCount > 1 {
		t.Errorf("at most one is_poc per window, got %d", pocCount)
	}

	// Ranking is ordered by factor count, touches, recency, distance.
	for i := 1; i < len(layers); i++ {
		a, b := layers[i-1], layers[i]
		if a.FactorCount < b.FactorCount {
			t.Errorf("ranking violated at %d: %+v before %+v", i, a, b)
		}
	}
}

// Running the detector twice on identical input yields identical ordered
// output; this is the determinism a replay harness would depend on.
func TestLayerDetector_Deterministic(t *testing.T) {
	candles := supportWindow(10, 20, 30, 45)
	d := usecase.NewLayerDetector(0, 0)

	first, err := d.Detect(candles)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	second, err := d.Detect(candles)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("detector is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
