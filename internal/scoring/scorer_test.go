package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fraud-velocity-lab/internal/domain"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero high value", Config{
			HighValueThreshold:     decimal.Zero,
			VelocityCountThreshold: 3,
			VelocityWindow:         24 * time.Hour,
		}, true},
		{"negative high value", Config{
			HighValueThreshold:     decimal.NewFromInt(-10),
			VelocityCountThreshold: 3,
			VelocityWindow:         24 * time.Hour,
		}, true},
		{"zero velocity count", Config{
			HighValueThreshold:     decimal.NewFromInt(1000),
			VelocityCountThreshold: 0,
			VelocityWindow:         24 * time.Hour,
		}, true},
		{"zero window", Config{
			HighValueThreshold:     decimal.NewFromInt(1000),
			VelocityCountThreshold: 3,
			VelocityWindow:         0,
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			} else if err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
		})
	}
}

func TestNewScorer_RejectsInvalidConfig(t *testing.T) {
	_, err := NewScorer(Config{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestScore_RuleTable(t *testing.T) {
	scorer, err := NewScorer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	tests := []struct {
		name         string
		value7d      string
		orders1d     int
		wantHighVal  bool
		wantVelocity bool
		wantScore    int
	}{
		{"neither flag", "500.00", 1, false, false, 0},
		{"high value only", "1500.00", 1, true, false, 1},
		{"high velocity only", "200.00", 3, false, true, 2},
		{"both flags", "1200.00", 4, true, true, 3},
		{"value exactly at threshold", "1000.00", 0, true, false, 1},
		{"count exactly at threshold", "0.00", 3, false, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := scorer.Score(domain.CustomerFeatureRecord{
				CustomerID: "c1",
				Orders1d:   tt.orders1d,
				Value7d:    decimal.RequireFromString(tt.value7d),
			})

			if r.FlagHighValue7d != tt.wantHighVal {
				t.Errorf("flag_high_value_7d: expected %t, got %t", tt.wantHighVal, r.FlagHighValue7d)
			}
			if r.FlagHighVelocity24h != tt.wantVelocity {
				t.Errorf("flag_high_velocity_24h: expected %t, got %t", tt.wantVelocity, r.FlagHighVelocity24h)
			}
			if r.VelocityScore != tt.wantScore {
				t.Errorf("velocity_score: expected %d, got %d", tt.wantScore, r.VelocityScore)
			}
		})
	}
}

func TestScore_ConcreteScenario(t *testing.T) {
	// 3 orders in 24h summing 200, plus an older 50: velocity flag
	// fires, value flag does not, score is exactly 2.
	scorer, err := NewScorer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	r := scorer.Score(domain.CustomerFeatureRecord{
		CustomerID: "C",
		Orders1d:   3,
		Orders7d:   3,
		Orders30d:  4,
		Value7d:    decimal.RequireFromString("200.00"),
		Value30d:   decimal.RequireFromString("250.00"),
	})

	if r.FlagHighValue7d {
		t.Error("expected flag_high_value_7d=false for value 200 < 1000")
	}
	if !r.FlagHighVelocity24h {
		t.Error("expected flag_high_velocity_24h=true for 3 orders in 1d")
	}
	if r.VelocityScore != 2 {
		t.Errorf("expected velocity_score=2, got %d", r.VelocityScore)
	}
}

func TestScoreAll_PreservesOrder(t *testing.T) {
	scorer, err := NewScorer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	records := []domain.CustomerFeatureRecord{
		{CustomerID: "a", Value7d: decimal.NewFromInt(2000)},
		{CustomerID: "b", Value7d: decimal.NewFromInt(10)},
	}

	scored := scorer.ScoreAll(records)

	if len(scored) != 2 || scored[0].CustomerID != "a" || scored[1].CustomerID != "b" {
		t.Fatalf("expected input order preserved, got %+v", scored)
	}
	if scored[0].VelocityScore != 1 || scored[1].VelocityScore != 0 {
		t.Errorf("expected scores 1,0, got %d,%d", scored[0].VelocityScore, scored[1].VelocityScore)
	}
}
