package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"network-journal/backend/internal/state"
	apperrors "network-journal/backend/pkg/errors"
	"network-journal/backend/pkg/logger"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = time.Second
	temperature       = 0.1
)

// Extractor turns free-form notes into entities and relationships using an
// OpenAI-compatible chat model
type Extractor struct {
	client     *openai.Client
	model      string
	owner      string
	mu         sync.RWMutex // protects model and owner
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewExtractor creates an extractor for the network centred on owner
func NewExtractor(baseURL, apiKey, modelID, owner string) *Extractor {
	// OpenAI-compatible proxies accept any key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = apiBaseURL(baseURL)

	return &Extractor{
		client:     openai.NewClientWithConfig(config),
		model:      modelID,
		owner:      owner,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
		logger:     logger.Named("notes"),
	}
}

// apiBaseURL accepts a server root or a root already ending in /v1
func apiBaseURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}

// SetModel updates the model used for extraction
func (x *Extractor) SetModel(model string) {
	if model == "" {
		return
	}
	x.mu.Lock()
	x.model = model
	x.mu.Unlock()
	x.logger.Debug("Extraction model updated", zap.String("model", model))
}

// Model returns the current model
func (x *Extractor) Model() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.model
}

// SetOwner changes the person notes are written from
func (x *Extractor) SetOwner(owner string) {
	x.mu.Lock()
	x.owner = owner
	x.mu.Unlock()
}

// Owner returns the person notes are written from
func (x *Extractor) Owner() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.owner
}

// Extract reads one note and returns the cleaned analysis
func (x *Extractor) Extract(ctx context.Context, note string) (*state.NoteAnalysis, error) {
	model := x.Model()
	owner := x.Owner()

	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.NewNotesExtractionFailed(model, 0, false, errors.New("note is empty"))
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(owner)},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Note: %q", note)},
		},
		Temperature: temperature,
	}

	var resp openai.ChatCompletionResponse
	var err error
	attempts := 0
	for attempt := 0; attempt < x.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * x.backoff
			x.logger.Warn("Retrying extraction request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewContextCancelled("note extraction", ctx.Err())
			}
		}

		attempts++
		resp, err = x.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		x.logger.Error("Extraction request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", model),
		)
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return nil, apperrors.NewNotesExtractionFailed(model, attempts, retryable(err), err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, apperrors.ErrNotesEmptyResponse
	}

	analysis, err := Parse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, apperrors.NewNotesExtractionFailed(model, attempts, false, err)
	}
	Clean(analysis, owner)

	x.logger.Info("Note analysed",
		zap.String("model", model),
		zap.Int("entities", len(analysis.Entities)),
		zap.Int("relationships", len(analysis.Relationships)),
		zap.Float64("confidence", analysis.ConfidenceScore),
	)
	return analysis, nil
}

// retryable reports whether a failed request may succeed when sent again
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Parse decodes a model answer. Code fences and text around the JSON object are ignored.
func Parse(content string) (*state.NoteAnalysis, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var analysis state.NoteAnalysis
	if err := json.Unmarshal([]byte(content[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}
	return &analysis, nil
}

// Clean normalises entity types, clamps confidences and strengths, and drops
// entities of unknown type and relationships whose endpoints are not entities
func Clean(a *state.NoteAnalysis, owner string) {
	known := map[string]bool{strings.ToLower(owner): true, "i": true, "me": true, "myself": true}

	entities := a.Entities[:0]
	for _, e := range a.Entities {
		kind := state.NormalizeEntityType(e.EntityType)
		if kind == "" || strings.TrimSpace(e.Name) == "" {
			a.ProcessingNotes = append(a.ProcessingNotes, fmt.Sprintf("dropped entity %q of type %q", e.Name, e.EntityType))
			continue
		}
		e.EntityType = kind
		e.Confidence = clamp(e.Confidence, 0, 1)
		known[strings.ToLower(strings.TrimSpace(e.Name))] = true
		entities = append(entities, e)
	}
	a.Entities = entities

	relationships := a.Relationships[:0]
	for _, r := range a.Relationships {
		if !known[strings.ToLower(strings.TrimSpace(r.FromEntity))] || !known[strings.ToLower(strings.TrimSpace(r.ToEntity))] {
			a.ProcessingNotes = append(a.ProcessingNotes, fmt.Sprintf("dropped relationship %s -> %s", r.FromEntity, r.ToEntity))
			continue
		}
		if r.Strength != 0 {
			r.Strength = int(clamp(float64(r.Strength), 1, 5))
		}
		relationships = append(relationships, r)
	}
	a.Relationships = relationships

	a.ConfidenceScore = clamp(a.ConfidenceScore, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
