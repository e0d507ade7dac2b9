// Package engine coordinates one comparison run: screening, cost
// normalization, scoring, summary, and the optional narrative step.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/costing"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/currency"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engineconfig"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/recommend"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/scoring"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/terms"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

// Comparator runs the comparison pipeline over an immutable batch of
// quotation records. One Comparator serves many runs; it holds no per-run
// state.
type Comparator struct {
	cfg        *engineconfig.Config
	configHash string

	calc   *costing.Calculator
	scorer *scoring.Scorer
	synth  contracts.Synthesizer

	logger *logger.Logger
}

// New builds a Comparator from a validated configuration. synth may be nil
// to disable narrative synthesis entirely. A bad config fails here, before
// any record is touched.
func New(cfg *engineconfig.Config, synth contracts.Synthesizer, log *logger.Logger) (*Comparator, error) {
	if cfg == nil {
		cfg = engineconfig.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hash, err := engineconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("config hash: %w", err)
	}

	scorer, err := scoring.New(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Comparator{
		cfg:        cfg,
		configHash: hash,
		calc:       costing.New(currency.New(cfg.Rates)),
		scorer:     scorer,
		synth:      synth,
		logger:     log.WithField("component", "comparator"),
	}, nil
}

// ConfigHash returns the hash of the effective configuration, for audit
// trails and cache keys.
func (c *Comparator) ConfigHash() string {
	return c.configHash
}

// Compare scores one batch of records. Per-supplier problems become
// exclusions and warnings on the result; only strict-mode currency failures
// abort. The input slice is never mutated.
func (c *Comparator) Compare(ctx context.Context, records []contracts.QuotationRecord) (*contracts.ComparisonResult, error) {
	started := time.Now()

	result := &contracts.ComparisonResult{
		RunID:           GenerateRunID(),
		GeneratedAt:     time.Now().UTC(),
		ConfigHash:      c.configHash,
		NarrativeStatus: contracts.NarrativeSkipped,
	}
	result.Warnings = append(result.Warnings, c.cfg.Warn()...)

	c.logger.WithFields(map[string]interface{}{
		"run_id":    result.RunID,
		"suppliers": len(records),
	}).Info("Starting comparison run")

	accepted := c.screen(records, result)

	inputs, err := c.normalizeCosts(accepted, result)
	if err != nil {
		return nil, fmt.Errorf("cost normalization: %w", err)
	}

	result.Results = c.scorer.Score(inputs)

	c.summarize(len(records), result)
	c.synthesize(ctx, result)

	c.logger.WithFields(map[string]interface{}{
		"run_id":    result.RunID,
		"scored":    len(result.Results),
		"excluded":  len(result.Excluded),
		"warnings":  len(result.Warnings),
		"narrative": string(result.NarrativeStatus),
		"duration":  time.Since(started).Seconds(),
	}).Info("Comparison run completed")

	return result, nil
}

// screen validates each record and drops duplicates of an already accepted
// supplier name. Rejected records become exclusions, never silent drops.
func (c *Comparator) screen(records []contracts.QuotationRecord, result *contracts.ComparisonResult) []contracts.QuotationRecord {
	c.logger.Info("Screening records")

	accepted := make([]contracts.QuotationRecord, 0, len(records))
	seen := make(map[string]bool, len(records))

	for i := range records {
		rec := records[i]

		if err := rec.Validate(); err != nil {
			result.Excluded = append(result.Excluded, contracts.Exclusion{
				Supplier: rec.SupplierName,
				Currency: rec.CurrencyCode,
				Reason:   err.Error(),
			})
			result.Warnings = append(result.Warnings, contracts.Warning{
				Code:    "INVALID_RECORD",
				Message: fmt.Sprintf("supplier %q excluded: %v", rec.SupplierName, err),
			})
			c.logger.WithFields(map[string]interface{}{
				"supplier": rec.SupplierName,
				"reason":   err.Error(),
			}).Warn("Record excluded by validation")
			continue
		}

		if seen[rec.SupplierName] {
			result.Excluded = append(result.Excluded, contracts.Exclusion{
				Supplier: rec.SupplierName,
				Currency: rec.CurrencyCode,
				Reason:   "duplicate supplier name in batch",
			})
			result.Warnings = append(result.Warnings, contracts.Warning{
				Code:    "DUPLICATE_SUPPLIER",
				Message: fmt.Sprintf("supplier %q appears more than once; only the first record is scored", rec.SupplierName),
			})
			c.logger.WithField("supplier", rec.SupplierName).Warn("Duplicate supplier record excluded")
			continue
		}
		seen[rec.SupplierName] = true

		accepted = append(accepted, rec)
	}

	c.logger.WithFields(map[string]interface{}{
		"accepted": len(accepted),
		"excluded": len(records) - len(accepted),
	}).Info("Screening completed")

	return accepted
}

// normalizeCosts enriches derived term fields on a private copy of each
// record, converts costs to EUR, and assembles scoring inputs. Unknown
// currencies exclude the supplier under the default policy and abort the
// batch under strict policy. Incomplete costs are kept and flagged.
func (c *Comparator) normalizeCosts(records []contracts.QuotationRecord, result *contracts.ComparisonResult) ([]scoring.Input, error) {
	c.logger.Info("Normalizing costs")

	inputs := make([]scoring.Input, 0, len(records))
	for i := range records {
		rec := records[i]
		terms.Enrich(&rec)

		cost, err := c.calc.Normalize(&rec)
		if err != nil {
			if c.cfg.Currency.Strict {
				return nil, err
			}
			result.Excluded = append(result.Excluded, contracts.Exclusion{
				Supplier: rec.SupplierName,
				Currency: rec.CurrencyCode,
				Reason:   err.Error(),
			})
			result.Warnings = append(result.Warnings, contracts.Warning{
				Code:    "UNKNOWN_CURRENCY",
				Message: err.Error(),
			})
			c.logger.WithFields(map[string]interface{}{
				"supplier": rec.SupplierName,
				"currency": rec.CurrencyCode,
			}).Warn("Supplier excluded for unknown currency")
			continue
		}

		if cost.Incomplete {
			incErr := &contracts.IncompleteRecordError{
				Supplier: rec.SupplierName,
				Missing:  rec.MissingFields(),
			}
			result.Warnings = append(result.Warnings, contracts.Warning{
				Code:    "INCOMPLETE_RECORD",
				Message: incErr.Error(),
			})
			c.logger.WithFields(map[string]interface{}{
				"supplier": rec.SupplierName,
				"missing":  rec.MissingFields(),
			}).Warn("Supplier retained with incomplete cost data")
		}

		inputs = append(inputs, scoring.BuildInput(&rec, cost))
	}

	c.logger.WithFields(map[string]interface{}{
		"normalized": len(inputs),
	}).Info("Cost normalization completed")

	return inputs, nil
}

// synthesize runs the narrative step under the configured timeout. Any
// failure downgrades the narrative to unavailable; the numeric result is
// already final by the time this runs.
func (c *Comparator) synthesize(ctx context.Context, result *contracts.ComparisonResult) {
	if c.synth == nil || !c.cfg.Narrative.Enabled || len(result.Results) == 0 {
		result.NarrativeStatus = contracts.NarrativeSkipped
		c.logger.Debug("Narrative synthesis skipped")
		return
	}

	c.logger.Info("Synthesizing narrative")

	payload := recommend.BuildPayload(result.Summary.Methodology, result.Summary.Weights, result.Results)

	synthCtx := ctx
	if c.cfg.Narrative.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		synthCtx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Narrative.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	narrative, err := c.synth.Synthesize(synthCtx, payload)
	if err != nil {
		var unavailable *contracts.RecommendationUnavailableError
		if !errors.As(err, &unavailable) {
			err = &contracts.RecommendationUnavailableError{Reason: "synthesis failed", Err: err}
		}
		result.NarrativeStatus = contracts.NarrativeUnavailable
		result.Warnings = append(result.Warnings, contracts.Warning{
			Code:    "RECOMMENDATION_UNAVAILABLE",
			Message: err.Error(),
		})
		c.logger.WithError(err).Warn("Narrative synthesis failed, numeric results returned without it")
		return
	}

	result.Warnings = append(result.Warnings, recommend.ValidateNarrative(narrative, payload)...)
	result.Narrative = narrative
	result.NarrativeStatus = contracts.NarrativeOK

	c.logger.WithFields(map[string]interface{}{
		"recommended":     narrative.RecommendedSupplier,
		"matches_ranking": narrative.MatchesRanking,
	}).Info("Narrative synthesis completed")
}

// GenerateRunID returns a unique identifier for one comparison run.
func GenerateRunID() string {
	return fmt.Sprintf("run_%s", uuid.NewString())
}
