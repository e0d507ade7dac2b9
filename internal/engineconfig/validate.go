package engineconfig

import (
	"fmt"
	"math"
	"regexp"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
)

var rateCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate checks every field and returns the first problem found as a
// *contracts.ConfigurationError. A config that fails validation must never
// reach the scoring engine.
func (c *Config) Validate() error {
	if c.Meta.MethodologyID == "" {
		return &contracts.ConfigurationError{Field: "meta.methodology_id", Message: "required"}
	}

	if len(c.Rates) == 0 {
		return &contracts.ConfigurationError{Field: "rates", Message: "rate table is empty"}
	}
	for code, rate := range c.Rates {
		if !rateCodeRe.MatchString(code) {
			return &contracts.ConfigurationError{
				Field:   "rates",
				Message: fmt.Sprintf("%q is not a 3-letter currency code", code),
			}
		}
		if rate <= 0 {
			return &contracts.ConfigurationError{
				Field:   fmt.Sprintf("rates.%s", code),
				Message: fmt.Sprintf("rate must be positive, got %g", rate),
			}
		}
	}
	eur, ok := c.Rates["EUR"]
	if !ok {
		return &contracts.ConfigurationError{Field: "rates", Message: "reference currency EUR missing from rate table"}
	}
	if eur != 1.0 {
		return &contracts.ConfigurationError{
			Field:   "rates.EUR",
			Message: fmt.Sprintf("reference currency rate must be 1.0, got %g", eur),
		}
	}

	if c.Scoring.WeightEpsilon <= 0 || c.Scoring.WeightEpsilon > 0.1 {
		return &contracts.ConfigurationError{
			Field:   "scoring.weight_epsilon",
			Message: fmt.Sprintf("must be in (0, 0.1], got %g", c.Scoring.WeightEpsilon),
		}
	}

	for criterion, w := range c.Weights.ByCriterion() {
		if w < 0 {
			return &contracts.ConfigurationError{
				Field:   fmt.Sprintf("weights.%s", criterion),
				Message: fmt.Sprintf("must not be negative, got %g", w),
			}
		}
	}
	if err := validateWeightSum(c.Weights.Sum(), 1.0, c.Scoring.WeightEpsilon); err != nil {
		return err
	}

	for criterion, dir := range c.Scoring.Directions.ByCriterion() {
		if dir != contracts.LowerIsBetter && dir != contracts.HigherIsBetter {
			return &contracts.ConfigurationError{
				Field:   fmt.Sprintf("scoring.directions.%s", criterion),
				Message: fmt.Sprintf("must be %q or %q, got %q", contracts.LowerIsBetter, contracts.HigherIsBetter, dir),
			}
		}
	}

	for criterion, p := range c.Scoring.MissingPenalty.ByCriterion() {
		if p < 0 || p > 1 {
			return &contracts.ConfigurationError{
				Field:   fmt.Sprintf("scoring.missing_penalty.%s", criterion),
				Message: fmt.Sprintf("must be in [0, 1], got %g", p),
			}
		}
	}

	if c.Scoring.NeutralScore < 0 || c.Scoring.NeutralScore > 1 {
		return &contracts.ConfigurationError{
			Field:   "scoring.neutral_score",
			Message: fmt.Sprintf("must be in [0, 1], got %g", c.Scoring.NeutralScore),
		}
	}

	if c.Narrative.Enabled && c.Narrative.TimeoutSeconds <= 0 {
		return &contracts.ConfigurationError{
			Field:   "narrative.timeout_seconds",
			Message: fmt.Sprintf("must be positive when narrative is enabled, got %d", c.Narrative.TimeoutSeconds),
		}
	}

	return nil
}

func validateWeightSum(sum, target, epsilon float64) error {
	if math.Abs(sum-target) > epsilon {
		return &contracts.ConfigurationError{
			Field:   "weights",
			Message: fmt.Sprintf("sum is %.6f, want %.1f within %g", sum, target, epsilon),
		}
	}
	return nil
}

// Warn reports legal but suspicious settings. Warnings never block a run;
// they are attached to the result for the caller to judge.
func (c *Config) Warn() []contracts.Warning {
	var warnings []contracts.Warning

	for _, criterion := range contracts.AllCriteria() {
		if c.Weights.ByCriterion()[criterion] == 0 {
			warnings = append(warnings, contracts.Warning{
				Code:    "ZERO_WEIGHT",
				Message: fmt.Sprintf("criterion %s carries no weight and cannot affect the ranking", criterion),
			})
		}
	}

	for _, criterion := range contracts.AllCriteria() {
		if c.Scoring.MissingPenalty.ByCriterion()[criterion] > c.Scoring.NeutralScore {
			warnings = append(warnings, contracts.Warning{
				Code:    "PENALTY_ABOVE_NEUTRAL",
				Message: fmt.Sprintf("missing_penalty.%s exceeds the neutral score; omitting data would beat a mid-field quote", criterion),
			})
		}
	}

	if len(c.Rates) == 1 {
		warnings = append(warnings, contracts.Warning{
			Code:    "SINGLE_CURRENCY",
			Message: "rate table lists only EUR; every foreign-currency quote will be excluded",
		})
	}

	return warnings
}
