// Package extract turns quotation document text into structured records via
// an OpenAI-compatible chat endpoint. Extraction is the only paid, rate
// limited step of the pipeline, so results are cached by document hash and
// calls are paced by a client-side limiter.
package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/redis"
)

// extractionTemperature is kept low: extraction wants transcription, not
// creativity.
const extractionTemperature = 0.1

// Client extracts quotation records from document text. It implements
// contracts.Extractor.
type Client struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
	cache   *redis.Cache
	log     *logger.Logger
}

// NewClient builds an extraction client. cache may be nil to disable result
// caching.
func NewClient(cfg config.LLMConfig, cache *redis.Cache, log *logger.Logger) *Client {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.ResolvedBaseURL()),
	)
	return &Client{
		client:  client,
		model:   cfg.ExtractModel,
		limiter: rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1),
		cache:   cache,
		log:     log.WithField("component", "extractor"),
	}
}

// Extract returns the structured record for one document. Cached results are
// served without a provider call; cache entries are keyed by the SHA-256 of
// the document text, so any edit to the source re-extracts.
func (c *Client) Extract(ctx context.Context, doc contracts.Document) (*contracts.QuotationRecord, error) {
	key := redis.ExtractionKey(doc.Hash())

	if c.cache != nil {
		var cached contracts.QuotationRecord
		hit, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.log.WithError(err).Warn("Extraction cache read failed, calling provider")
		} else if hit {
			c.log.WithField("document", doc.Name).Debug("Extraction cache hit")
			return &cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("extract %q: %w", doc.Name, err)
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionPrompt),
			openai.UserMessage("Extract structured data from this quotation:\n\n" + doc.Text),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(extractionTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", doc.Name, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("extract %q: provider returned no choices", doc.Name)
	}

	record, err := Coerce([]byte(completion.Choices[0].Message.Content), doc.Name)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", doc.Name, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, record, redis.TTLExtraction); err != nil {
			c.log.WithError(err).Warn("Extraction cache write failed")
		}
	}

	c.log.WithFields(map[string]interface{}{
		"document": doc.Name,
		"supplier": record.SupplierName,
	}).Info("Document extracted")

	return record, nil
}

// Extraction is the per-document outcome of a batch extraction. Failures
// stay attached to their document instead of aborting the batch.
type Extraction struct {
	Document contracts.Document
	Record   *contracts.QuotationRecord
	Err      error
}

// ExtractAll extracts every document concurrently, one goroutine per
// document, paced by the shared rate limiter. Results come back in input
// order.
func (c *Client) ExtractAll(ctx context.Context, docs []contracts.Document) []Extraction {
	results := make([]Extraction, len(docs))

	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record, err := c.Extract(ctx, docs[i])
			results[i] = Extraction{Document: docs[i], Record: record, Err: err}
		}(i)
	}
	wg.Wait()

	return results
}

const extractionPrompt = `You are an expert procurement analyst extracting structured data from supplier quotations.

Handle ALL variations:

1. DATE FORMATS (normalize to ISO: YYYY-MM-DD):
   - "21-Oct-2025" -> 2025-10-21
   - "21.10.2025" -> 2025-10-21
   - "21/10/2025" -> 2025-10-21

2. FIELD LABEL VARIATIONS:
   - Annual Quantity: "Volume", "Annual Quantity", "Annual Peak Volume", "Yearly Quantity"
   - Tooling Cost: "Tooling Cost", "NRE", "Development Cost", "Tooling Fee"
   - Tooling Renewal Cost: "Tooling renewal cost", "Annual Tooling", "Recurring Tooling" - if "renewal" or "recurring", set tooling_cost_type to "renewal" and extract the annual amount.
   - Delivery Terms: "Delivery Terms", "Delivery Condition", "Incoterms", "Delivery Terms for Part"

3. NUMBER FORMATS:
   - European: "50.000" -> 50000 (dots as thousand separators)
   - US: "50,000" -> 50000 (commas as thousand separators)
   - Prices: "37.00" -> 37.00 (decimal point)

4. CURRENCY VARIATIONS:
   - Detect from symbols and codes (EUR, USD, GBP, JPY)
   - Normalize to ISO codes

5. MULTI-LANGUAGE:
   - German: "Wochen" = weeks, "Anzahlung" = down payment
   - Translate to English equivalents

6. MISSING FIELDS:
   - If a field is missing, use null
   - If placeholder like "<Validity>", treat as missing
   - Never substitute 0 for a missing value

7. TABLE EXTRACTION:
   - Extract prices and quantities from tables
   - Map years to prices and quantities correctly
   - IMPORTANT: annual_prices and annual_quantities must use ACTUAL YEAR NUMBERS (e.g., 2027, 2028, 2029)
   - Do NOT use "Year 1", "Year 2" - extract the actual calendar year
   - If year is not specified, infer from the quotation date or use sequential years starting from the current year

Respond with a JSON object containing exactly these keys:
- "supplier_name": supplier company name (string)
- "annual_prices": object mapping year to unit price, e.g. {"2027": 37.0} (may be empty)
- "annual_quantities": object mapping year to quantity, e.g. {"2027": 50000} (may be empty)
- "tooling_cost": one-time tooling cost, or the annual amount for renewal tooling (number or null)
- "tooling_cost_type": "one-time" or "renewal" (string or null)
- "delivery_terms": delivery terms text (string or null)
- "lead_time": lead time text (string or null)
- "payment_terms": payment terms text (string or null)
- "currency": primary currency ISO code (string)
- "quotation_date": quotation date in ISO format (string or null)
- "moq": minimum order quantity (integer or null)`
