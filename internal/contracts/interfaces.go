package contracts

import (
	"context"
	"time"
)

// Extractor turns one raw quotation document into a structured record.
// Implementations call an external model and must apply strict coercion:
// fields the document does not state come back as nil, never zero.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (*QuotationRecord, error)
}

// Synthesizer produces the recommendation narrative for a scored batch.
// Failures must surface as *RecommendationUnavailableError so callers can
// keep the numeric results.
type Synthesizer interface {
	Synthesize(ctx context.Context, payload RecommendationPayload) (*Narrative, error)
}

// RunStore persists comparison runs for later retrieval.
type RunStore interface {
	Save(ctx context.Context, run *ComparisonRun) error
	Get(ctx context.Context, id string) (*ComparisonRun, error)
	List(ctx context.Context, limit int) ([]*ComparisonRun, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
