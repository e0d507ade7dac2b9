package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/redis"
)

const systemPrompt = "You are a senior procurement analyst with 15+ years of experience " +
	"in strategic sourcing and supplier selection. Provide clear, data-driven recommendations."

// narrativeTemperature keeps the tone consistent across runs without making
// the output fully deterministic.
const narrativeTemperature = 0.4

// Synthesizer produces procurement narratives from scored comparison
// payloads via an OpenAI-compatible chat endpoint. It implements
// contracts.Synthesizer.
type Synthesizer struct {
	client openai.Client
	model  string
	cache  *redis.Cache
	log    *logger.Logger
}

// NewSynthesizer builds a Synthesizer from LLM settings. cache may be nil,
// in which case every call goes to the provider.
func NewSynthesizer(cfg config.LLMConfig, cache *redis.Cache, log *logger.Logger) *Synthesizer {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.ResolvedBaseURL()),
	)
	return &Synthesizer{
		client: client,
		model:  cfg.NarrativeModel,
		cache:  cache,
		log:    log.WithField("component", "synthesizer"),
	}
}

// narrativeEnvelope is the JSON shape requested from the model.
type narrativeEnvelope struct {
	RecommendedSupplier string   `json:"recommended_supplier"`
	Reasoning           string   `json:"reasoning"`
	KeyAdvantages       []string `json:"key_advantages"`
	Considerations      []string `json:"considerations"`
	MissingDataImpact   string   `json:"missing_data_impact"`
}

// Synthesize generates a narrative for the payload. Identical payloads hash
// to the same cache key, so re-running an unchanged comparison does not
// spend tokens. All failures come back wrapped in
// contracts.RecommendationUnavailableError.
func (s *Synthesizer) Synthesize(ctx context.Context, payload contracts.RecommendationPayload) (*contracts.Narrative, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &contracts.RecommendationUnavailableError{Reason: "payload encoding failed", Err: err}
	}
	sum := sha256.Sum256(body)
	key := redis.NarrativeKey(hex.EncodeToString(sum[:]))

	if s.cache != nil {
		var cached contracts.Narrative
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).Warn("Narrative cache read failed, calling provider")
		} else if hit {
			s.log.Debug("Narrative cache hit")
			return &cached, nil
		}
	}

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(payload, body)),
		},
		Model:       openai.ChatModel(s.model),
		Temperature: openai.Float(narrativeTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, &contracts.RecommendationUnavailableError{Reason: "chat completion failed", Err: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &contracts.RecommendationUnavailableError{Reason: "provider returned no choices"}
	}

	var envelope narrativeEnvelope
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &envelope); err != nil {
		return nil, &contracts.RecommendationUnavailableError{Reason: "malformed narrative JSON", Err: err}
	}

	narrative := &contracts.Narrative{
		RecommendedSupplier: strings.TrimSpace(envelope.RecommendedSupplier),
		Reasoning:           strings.TrimSpace(envelope.Reasoning),
		KeyAdvantages:       envelope.KeyAdvantages,
		Considerations:      envelope.Considerations,
		MissingDataImpact:   strings.TrimSpace(envelope.MissingDataImpact),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, narrative, redis.TTLDaily); err != nil {
			s.log.WithError(err).Warn("Narrative cache write failed")
		}
	}

	return narrative, nil
}

// buildUserPrompt renders the scored table and the response contract. The
// model sees only the payload JSON; extraction text never reaches this
// prompt.
func buildUserPrompt(payload contracts.RecommendationPayload, payloadJSON []byte) string {
	var b strings.Builder
	b.WriteString("Analyze this supplier quotation comparison and recommend the best supplier.\n\n")
	fmt.Fprintf(&b, "Methodology: %s\n", payload.Methodology)
	b.WriteString("Suppliers are ranked by weighted composite score (higher is better). ")
	b.WriteString("All monetary values are in EUR. Lead time and payment terms are in days.\n\n")
	b.WriteString("Comparison data (JSON):\n")
	b.Write(payloadJSON)
	b.WriteString("\n\nRespond with a JSON object containing exactly these keys:\n")
	b.WriteString(`- "recommended_supplier": name of the best supplier` + "\n")
	b.WriteString(`- "reasoning": detailed explanation (400-600 words) covering total cost of ownership, delivery, payment terms, tooling and MOQ trade-offs` + "\n")
	b.WriteString(`- "key_advantages": list of 4-6 key advantages of the recommended supplier` + "\n")
	b.WriteString(`- "considerations": list of 3-5 risks or considerations to keep in mind` + "\n")
	b.WriteString(`- "missing_data_impact": how missing data affected this analysis` + "\n")
	return b.String()
}
