package contracts

import (
	"fmt"
	"strings"
)

// ValidationError reports a malformed record field at the extraction
// boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigurationError reports an invalid engine configuration. It is fatal
// and raised before any computation starts; a bad weight table must never
// produce a plausible-looking ranking.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %s", e.Message)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Message)
}

// UnknownCurrencyError reports a record quoting in a currency absent from
// the rate table. Under the default policy the supplier is excluded with a
// warning; under strict currency policy the whole batch aborts.
type UnknownCurrencyError struct {
	Supplier string
	Currency string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q for supplier %q", e.Currency, e.Supplier)
}

// IncompleteRecordError reports a record that cannot yield a total cost,
// typically a missing annual volume. The supplier stays in the comparison,
// flagged, with the missing criteria scored by penalty.
type IncompleteRecordError struct {
	Supplier string
	Missing  []string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("incomplete record for supplier %q: missing %s", e.Supplier, strings.Join(e.Missing, ", "))
}

// RecommendationUnavailableError reports that narrative synthesis failed or
// timed out. Numeric results are unaffected and still returned.
type RecommendationUnavailableError struct {
	Reason string
	Err    error
}

func (e *RecommendationUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recommendation unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("recommendation unavailable: %s", e.Reason)
}

func (e *RecommendationUnavailableError) Unwrap() error {
	return e.Err
}
