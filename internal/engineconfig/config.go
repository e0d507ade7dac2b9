// Package engineconfig is the single source of truth for every tunable of
// the comparison engine: the currency rate table, criterion weights and
// directions, missing-value penalties, and batch policies. Runs are
// reproducible from a config hash, so all knobs live here rather than in
// code.
package engineconfig

import (
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
)

// Config holds one complete engine configuration. Loaded from YAML or built
// by Default; either way it is validated before any computation starts.
type Config struct {
	Meta      Meta               `yaml:"meta" json:"meta"`
	Rates     map[string]float64 `yaml:"rates" json:"rates"`
	Weights   Weights            `yaml:"weights" json:"weights"`
	Scoring   Scoring            `yaml:"scoring" json:"scoring"`
	Currency  CurrencyPolicy     `yaml:"currency" json:"currency"`
	Narrative NarrativePolicy    `yaml:"narrative" json:"narrative"`
}

// Meta identifies the methodology a config implements.
type Meta struct {
	MethodologyID string `yaml:"methodology_id" json:"methodology_id"`
	Version       string `yaml:"version" json:"version"`
}

// Weights is the criterion weight table. Weights must be non-negative and
// sum to 1.0 within Scoring.WeightEpsilon.
type Weights struct {
	TCO      float64 `yaml:"tco" json:"tco"`
	Delivery float64 `yaml:"delivery" json:"delivery"`
	Payment  float64 `yaml:"payment" json:"payment"`
	Tooling  float64 `yaml:"tooling" json:"tooling"`
	MOQ      float64 `yaml:"moq" json:"moq"`
}

// Sum returns the total weight across all criteria.
func (w Weights) Sum() float64 {
	return w.TCO + w.Delivery + w.Payment + w.Tooling + w.MOQ
}

// ByCriterion returns the weight table keyed by criterion.
func (w Weights) ByCriterion() map[contracts.Criterion]float64 {
	return map[contracts.Criterion]float64{
		contracts.CriterionTCO:      w.TCO,
		contracts.CriterionDelivery: w.Delivery,
		contracts.CriterionPayment:  w.Payment,
		contracts.CriterionTooling:  w.Tooling,
		contracts.CriterionMOQ:      w.MOQ,
	}
}

// Directions states, per criterion, whether lower or higher raw values win.
type Directions struct {
	TCO      contracts.Direction `yaml:"tco" json:"tco"`
	Delivery contracts.Direction `yaml:"delivery" json:"delivery"`
	Payment  contracts.Direction `yaml:"payment" json:"payment"`
	Tooling  contracts.Direction `yaml:"tooling" json:"tooling"`
	MOQ      contracts.Direction `yaml:"moq" json:"moq"`
}

// ByCriterion returns the direction table keyed by criterion.
func (d Directions) ByCriterion() map[contracts.Criterion]contracts.Direction {
	return map[contracts.Criterion]contracts.Direction{
		contracts.CriterionTCO:      d.TCO,
		contracts.CriterionDelivery: d.Delivery,
		contracts.CriterionPayment:  d.Payment,
		contracts.CriterionTooling:  d.Tooling,
		contracts.CriterionMOQ:      d.MOQ,
	}
}

// Penalties is the normalized score assigned when a criterion value is
// missing. Each entry must lie in [0, 1]; 0 is the conservative default.
type Penalties struct {
	TCO      float64 `yaml:"tco" json:"tco"`
	Delivery float64 `yaml:"delivery" json:"delivery"`
	Payment  float64 `yaml:"payment" json:"payment"`
	Tooling  float64 `yaml:"tooling" json:"tooling"`
	MOQ      float64 `yaml:"moq" json:"moq"`
}

// ByCriterion returns the penalty table keyed by criterion.
func (p Penalties) ByCriterion() map[contracts.Criterion]float64 {
	return map[contracts.Criterion]float64{
		contracts.CriterionTCO:      p.TCO,
		contracts.CriterionDelivery: p.Delivery,
		contracts.CriterionPayment:  p.Payment,
		contracts.CriterionTooling:  p.Tooling,
		contracts.CriterionMOQ:      p.MOQ,
	}
}

// Scoring holds the normalization knobs.
type Scoring struct {
	Directions     Directions `yaml:"directions" json:"directions"`
	MissingPenalty Penalties  `yaml:"missing_penalty" json:"missing_penalty"`

	// NeutralScore is assigned to every supplier when a criterion has no
	// spread (max == min among known values).
	NeutralScore float64 `yaml:"neutral_score" json:"neutral_score"`

	// WeightEpsilon is the tolerance for the weight-sum check.
	WeightEpsilon float64 `yaml:"weight_epsilon" json:"weight_epsilon"`
}

// CurrencyPolicy controls how records quoting in an unlisted currency are
// handled.
type CurrencyPolicy struct {
	// Strict aborts the whole batch on the first unknown currency instead
	// of excluding the supplier with a warning.
	Strict bool `yaml:"strict" json:"strict"`
}

// NarrativePolicy controls the synthesis step.
type NarrativePolicy struct {
	Enabled        bool `yaml:"enabled" json:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Default returns the stock configuration: the built-in EUR rate table and
// the standard weight split. Used whenever no config file is given.
func Default() *Config {
	return &Config{
		Meta: Meta{
			MethodologyID: "supplier-quote-v1",
			Version:       "1.0",
		},
		Rates: map[string]float64{
			"USD": 0.92,
			"EUR": 1.0,
			"GBP": 1.17,
			"JPY": 0.0062,
		},
		Weights: Weights{
			TCO:      0.35,
			Delivery: 0.25,
			Payment:  0.20,
			Tooling:  0.10,
			MOQ:      0.10,
		},
		Scoring: Scoring{
			// Payment is scored on the day count, where shorter terms win,
			// so every default direction is lower-is-better. Buyers who
			// prefer long payment terms flip payment to "higher".
			Directions: Directions{
				TCO:      contracts.LowerIsBetter,
				Delivery: contracts.LowerIsBetter,
				Payment:  contracts.LowerIsBetter,
				Tooling:  contracts.LowerIsBetter,
				MOQ:      contracts.LowerIsBetter,
			},
			MissingPenalty: Penalties{},
			NeutralScore:   0.5,
			WeightEpsilon:  0.01,
		},
		Currency: CurrencyPolicy{
			Strict: false,
		},
		Narrative: NarrativePolicy{
			Enabled:        true,
			TimeoutSeconds: 60,
		},
	}
}
