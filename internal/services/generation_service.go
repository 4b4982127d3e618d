package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/EoghannIrving/echo-journal/internal/models"
)

// classificationGuide describes the corpus taxonomy to the model so the
// generated prompt comes back labeled for the filter cascade.
const classificationGuide = `Prompts are labeled with an anchor describing how much effort they ask for:
- micro: a single sentence or list item, no reflection required
- soft: a gentle, low-stakes question
- moderate: a question that asks for some genuine reflection
- strong: a demanding question that digs into hard moments
Tags are short lowercase topics such as "gratitude", "memory" or "planning".`

// GenerationService asks an OpenAI-compatible completions endpoint for a
// new journaling prompt and folds it into the corpus.
type GenerationService struct {
	baseURL func() string
	apiKey  KeyProvider
	model   func() string

	httpClient *http.Client
	logger     *logrus.Logger
	prompts    *PromptService
}

// generationRequest is the completions payload.
type generationRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// generationResponse is the slice of the completions response we use.
type generationResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// NewGenerationService creates a new generation service
func NewGenerationService(baseURL func() string, apiKey KeyProvider, model func() string, prompts *PromptService) *GenerationService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &GenerationService{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // completion endpoints can be slow
		},
		logger:  logger,
		prompts: prompts,
	}
}

// Enabled reports whether a generation API key is configured.
func (s *GenerationService) Enabled() bool {
	return s.apiKey() != ""
}

// Generate requests one new prompt for the anchor, appends it to the
// corpus and returns the stored template.
func (s *GenerationService) Generate(ctx context.Context, anchor models.Anchor) (*models.PromptTemplate, error) {
	apiKey := s.apiKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no generation API key configured")
	}

	instruction := fmt.Sprintf(
		"Using the following classification system, create one journaling prompt "+
			"with the %q anchor and label it. Respond ONLY with JSON containing the "+
			"keys 'prompt', 'anchor', and 'tags'.\n%s",
		anchor, classificationGuide,
	)

	reqBody := generationRequest{
		Model:     s.model(),
		Prompt:    instruction,
		MaxTokens: 120,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"anchor": anchor,
		"model":  reqBody.Model,
	}).Info("Requesting generated prompt")

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL(), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if err := WaitOutbound(ctx, req.URL.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	start := time.Now()
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorRequest("generation")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.recordError()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorLatency("generation", time.Since(start).Seconds())
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
	if err != nil {
		s.recordError()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		s.recordError()
		return nil, fmt.Errorf("generation failed: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var completion generationResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		s.recordError()
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(completion.Choices) == 0 {
		s.recordError()
		return nil, fmt.Errorf("no completion returned")
	}

	var generated struct {
		Prompt string   `json:"prompt"`
		Anchor string   `json:"anchor"`
		Tags   []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(completion.Choices[0].Text), &generated); err != nil {
		s.recordError()
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	if strings.TrimSpace(generated.Prompt) == "" {
		s.recordError()
		return nil, fmt.Errorf("model returned an empty prompt")
	}

	template := models.PromptTemplate{
		ID:     generatedID(),
		Text:   strings.TrimSpace(generated.Prompt),
		Anchor: validAnchorOr(generated.Anchor, anchor),
		Tags:   generated.Tags,
	}

	if err := s.prompts.Append(template); err != nil {
		return nil, fmt.Errorf("failed to store generated prompt: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":     template.ID,
		"anchor": template.Anchor,
	}).Info("Stored generated prompt")

	return &template, nil
}

// generatedID produces a short corpus id with the "ai" style prefix.
func generatedID() string {
	return "ai-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// validAnchorOr returns the model's anchor when it names a real tier,
// otherwise the anchor the caller asked for.
func validAnchorOr(raw string, fallback models.Anchor) models.Anchor {
	switch models.Anchor(strings.ToLower(strings.TrimSpace(raw))) {
	case models.AnchorMicro:
		return models.AnchorMicro
	case models.AnchorSoft:
		return models.AnchorSoft
	case models.AnchorModerate:
		return models.AnchorModerate
	case models.AnchorStrong:
		return models.AnchorStrong
	}
	return fallback
}

func (s *GenerationService) recordError() {
	if m := GetMetrics(); m != nil {
		m.RecordCollaboratorError("generation")
	}
}
