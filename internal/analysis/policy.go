package analysis

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy holds the thresholds the analyzers apply.
type Policy struct {
	VarianceMateriality float64 `yaml:"variance_materiality"`
	VarianceMedium      float64 `yaml:"variance_medium"`
	VarianceHigh        float64 `yaml:"variance_high"`

	PatternMinConsecutive  int `yaml:"pattern_min_consecutive"`
	PatternHighConsecutive int `yaml:"pattern_high_consecutive"`
	TrendMinPeriods        int `yaml:"trend_min_periods"`

	ForecastMinElapsed      float64 `yaml:"forecast_min_elapsed"`
	ForecastHighOvershoot   float64 `yaml:"forecast_high_overshoot"`
	ForecastMediumOvershoot float64 `yaml:"forecast_medium_overshoot"`

	RiskShareThreshold float64 `yaml:"risk_share_threshold"`

	OptimizationDonorMaxUsage  float64 `yaml:"optimization_donor_max_usage"`
	OptimizationReleaseShare   float64 `yaml:"optimization_release_share"`
	OptimizationMaxSuggestions int     `yaml:"optimization_max_suggestions"`

	AnomalyMultiple     float64 `yaml:"anomaly_multiple"`
	AnomalyHighMultiple float64 `yaml:"anomaly_high_multiple"`
	AnomalyLookback     int     `yaml:"anomaly_lookback"`

	HistoryPeriods    int `yaml:"history_periods"`
	RecommendationCap int `yaml:"recommendation_cap"`
}

// DefaultPolicy returns the built-in thresholds.
func DefaultPolicy() Policy {
	return Policy{
		VarianceMateriality: 0.20,
		VarianceMedium:      0.20,
		VarianceHigh:        0.50,

		PatternMinConsecutive:  2,
		PatternHighConsecutive: 3,
		TrendMinPeriods:        3,

		ForecastMinElapsed:      0.10,
		ForecastHighOvershoot:   0.20,
		ForecastMediumOvershoot: 0.05,

		RiskShareThreshold: 0.30,

		OptimizationDonorMaxUsage:  60,
		OptimizationReleaseShare:   0.50,
		OptimizationMaxSuggestions: 3,

		AnomalyMultiple:     1.5,
		AnomalyHighMultiple: 2.5,
		AnomalyLookback:     3,

		HistoryPeriods:    4,
		RecommendationCap: 5,
	}
}

// LoadPolicy reads a YAML policy file. Keys missing from the file keep
// their default values.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks the thresholds for consistency.
func (p Policy) Validate() error {
	var errs []string

	if p.VarianceMateriality < 0 {
		errs = append(errs, "variance_materiality cannot be negative")
	}
	if p.VarianceHigh < p.VarianceMedium {
		errs = append(errs, "variance_high must be >= variance_medium")
	}
	if p.PatternMinConsecutive < 2 {
		errs = append(errs, "pattern_min_consecutive must be at least 2")
	}
	if p.PatternHighConsecutive < p.PatternMinConsecutive {
		errs = append(errs, "pattern_high_consecutive must be >= pattern_min_consecutive")
	}
	if p.TrendMinPeriods < 2 {
		errs = append(errs, "trend_min_periods must be at least 2")
	}
	if p.ForecastMinElapsed <= 0 || p.ForecastMinElapsed > 1 {
		errs = append(errs, "forecast_min_elapsed must be in (0,1]")
	}
	if p.ForecastHighOvershoot < p.ForecastMediumOvershoot {
		errs = append(errs, "forecast_high_overshoot must be >= forecast_medium_overshoot")
	}
	if p.RiskShareThreshold < 0 || p.RiskShareThreshold > 1 {
		errs = append(errs, "risk_share_threshold must be in [0,1]")
	}
	if p.OptimizationReleaseShare <= 0 || p.OptimizationReleaseShare > 1 {
		errs = append(errs, "optimization_release_share must be in (0,1]")
	}
	if p.OptimizationMaxSuggestions < 0 {
		errs = append(errs, "optimization_max_suggestions cannot be negative")
	}
	if p.AnomalyMultiple <= 1 {
		errs = append(errs, "anomaly_multiple must be greater than 1")
	}
	if p.AnomalyHighMultiple < p.AnomalyMultiple {
		errs = append(errs, "anomaly_high_multiple must be >= anomaly_multiple")
	}
	if p.AnomalyLookback < 1 {
		errs = append(errs, "anomaly_lookback must be at least 1")
	}
	if p.HistoryPeriods < 2 {
		errs = append(errs, "history_periods must be at least 2")
	}
	if p.TrendMinPeriods >= p.HistoryPeriods {
		errs = append(errs, "trend_min_periods must be smaller than history_periods")
	}
	if p.AnomalyLookback >= p.HistoryPeriods {
		errs = append(errs, "anomaly_lookback must be smaller than history_periods")
	}
	if p.RecommendationCap < 1 {
		errs = append(errs, "recommendation_cap must be at least 1")
	}

	if len(errs) > 0 {
		return errors.New("invalid policy: " + strings.Join(errs, "; "))
	}
	return nil
}
