// Package scoring applies fixed threshold rules to customer feature
// records, producing risk flags and an ordinal velocity score.
package scoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fraud-velocity-lab/internal/domain"
)

// ErrInvalidConfig is returned for non-positive thresholds or windows.
// A bad threshold silently corrupts every customer's score, so the
// configuration is rejected before any computation begins.
var ErrInvalidConfig = errors.New("invalid scoring configuration")

// Config holds the scorer's thresholds. All three values are explicit:
// the velocity window width and the velocity count threshold are
// independent parameters even though the reference setup fixes the
// window at one day.
type Config struct {
	// HighValueThreshold flags customers whose 7-day value meets or
	// exceeds it.
	HighValueThreshold decimal.Decimal

	// VelocityCountThreshold flags customers with at least this many
	// orders inside the velocity window.
	VelocityCountThreshold int

	// VelocityWindow is the width of the short window the velocity
	// flag is computed over.
	VelocityWindow time.Duration
}

// DefaultConfig returns the reference thresholds: R$ 1000 over 7 days,
// 3 orders within 24 hours.
func DefaultConfig() Config {
	return Config{
		HighValueThreshold:     decimal.NewFromInt(1000),
		VelocityCountThreshold: 3,
		VelocityWindow:         24 * time.Hour,
	}
}

// Validate rejects non-positive thresholds and windows.
func (c Config) Validate() error {
	if !c.HighValueThreshold.IsPositive() {
		return fmt.Errorf("%w: high value threshold must be positive, got %s",
			ErrInvalidConfig, c.HighValueThreshold)
	}
	if c.VelocityCountThreshold <= 0 {
		return fmt.Errorf("%w: velocity count threshold must be positive, got %d",
			ErrInvalidConfig, c.VelocityCountThreshold)
	}
	if c.VelocityWindow <= 0 {
		return fmt.Errorf("%w: velocity window must be positive, got %s",
			ErrInvalidConfig, c.VelocityWindow)
	}
	return nil
}

// scoreTable maps the (high value, high velocity) flag pair to its
// ordinal severity. An explicit table, not a weighted sum: adding a
// third flag must not silently reshuffle existing severities.
var scoreTable = map[[2]bool]int{
	{false, false}: 0,
	{true, false}:  1,
	{false, true}:  2,
	{true, true}:   3,
}

// Scorer applies the configured rules to feature records.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer, validating the configuration first.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score returns a copy of the record with flags and velocity score
// set. Pure function of the record and the configured thresholds; it
// never fails given a valid feature record.
func (s *Scorer) Score(r domain.CustomerFeatureRecord) domain.CustomerFeatureRecord {
	r.FlagHighValue7d = r.Value7d.GreaterThanOrEqual(s.cfg.HighValueThreshold)
	r.FlagHighVelocity24h = r.Orders1d >= s.cfg.VelocityCountThreshold
	r.VelocityScore = scoreTable[[2]bool{r.FlagHighValue7d, r.FlagHighVelocity24h}]
	return r
}

// ScoreAll scores every record, preserving input order.
func (s *Scorer) ScoreAll(records []domain.CustomerFeatureRecord) []domain.CustomerFeatureRecord {
	scored := make([]domain.CustomerFeatureRecord, len(records))
	for i, r := range records {
		scored[i] = s.Score(r)
	}
	return scored
}
