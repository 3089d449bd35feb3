package usecase_test

import (
	"testing"

	"github.com/dijiclick/pepebot/internal/domain"
	"github.com/dijiclick/pepebot/internal/usecase"
)

func TestProximityScanner_NoLayerInBand(t *testing.T) {
	s := usecase.NewProximityScanner(0.1)
	layers := []domain.Layer{
		{PriceLevel: 101.0, Side: domain.SideResistance, FactorCount: 3},
		{PriceLevel: 99.0, Side: domain.SideSupport, FactorCount: 3},
	}
	if ev := s.Scan(100.0, layers); ev != nil {
		t.Fatalf("expected no event, got %+v", ev)
	}
}

func TestProximityScanner_NearestWins(t *testing.T) {
	s := usecase.NewProximityScanner(0.1)
	layers := []domain.Layer{
		{PriceLevel: 100.09, Side: domain.SideResistance, FactorCount: 2},
		{PriceLevel: 99.95, Side: domain.SideSupport, FactorCount: 3},
	}
	ev := s.Scan(100.0, layers)
	if ev == nil {
		t.Fatal("expected an event")
	}
	if ev.Layer.PriceLevel != 99.95 {
		t.Errorf("expected nearest layer 99.95, got %f", ev.Layer.PriceLevel)
	}
	if ev.Direction != domain.SideLong {
		t.Errorf("support bounce should be LONG, got %s", ev.Direction)
	}
}

func TestProximityScanner_TieBreaks(t *testing.T) {
	s := usecase.NewProximityScanner(0.1)

	// Equidistant layers: higher factor count wins.
	layers := []domain.Layer{
		{PriceLevel: 100.05, Side: domain.SideResistance, FactorCount: 3},
		{PriceLevel: 99.95, Side: domain.SideSupport, FactorCount: 2},
	}
	ev := s.Scan(100.0, layers)
	if ev == nil || ev.Layer.PriceLevel != 100.05 {
		t.Fatalf("expected the 3-factor layer to win the tie, got %+v", ev)
	}

	// Equidistant, equal factors: support wins over resistance.
	layers = []domain.Layer{
		{PriceLevel: 100.05, Side: domain.SideResistance, FactorCount: 2},
		{PriceLevel: 99.95, Side: domain.SideSupport, FactorCount: 2},
	}
	ev = s.Scan(100.0, layers)
	if ev == nil || ev.Layer.Side != domain.SideSupport {
		t.Fatalf("expected support to win the tie, got %+v", ev)
	}
}
