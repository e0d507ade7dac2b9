package contracts

import "time"

// ComparisonRun is the persisted record of one comparison, as stored by the
// history layer. Result holds the full ComparisonResult for replay.
type ComparisonRun struct {
	ID              string            `json:"id"`
	CreatedAt       time.Time         `json:"created_at"`
	ConfigHash      string            `json:"config_hash"`
	SupplierCount   int               `json:"supplier_count"`
	ExcludedCount   int               `json:"excluded_count"`
	BestSupplier    string            `json:"best_supplier"`
	NarrativeStatus NarrativeStatus   `json:"narrative_status"`
	Result          *ComparisonResult `json:"result,omitempty"`
}
