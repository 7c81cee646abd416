package notes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-journal/backend/internal/state"
	apperrors "network-journal/backend/pkg/errors"
)

const sampleAnswer = "```json\n" + `{
  "entities": [
    {"name": "John", "entity_type": "Person", "confidence": 1.4, "context": "met at the conference"},
    {"name": "Google", "entity_type": "organization", "confidence": 0.8},
    {"name": "Blue", "entity_type": "colour", "confidence": 0.5}
  ],
  "relationships": [
    {"from_entity": "I", "to_entity": "John", "relationship_type": "KNOWS", "strength": 9},
    {"from_entity": "John", "to_entity": "Google", "relationship_type": "WORKS_AT"},
    {"from_entity": "John", "to_entity": "Blue", "relationship_type": "LIKES"}
  ],
  "confidence_score": -0.2
}` + "\n```"

// fakeModel answers chat completions with content after failing the first
// failures requests with status
func fakeModel(t *testing.T, content string, failures int32, status int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		n := atomic.AddInt32(&calls, 1)

		var req openai.ChatCompletionRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || !assert.Len(t, req.Messages, 2) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Contains(t, req.Messages[0].Content, `"Alice"`)

		w.Header().Set("Content-Type", "application/json")
		if n <= failures {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestExtractor(url string) *Extractor {
	x := NewExtractor(url, "", "test-model", "Alice")
	x.backoff = time.Millisecond
	return x
}

func TestExtractCleansAnalysis(t *testing.T) {
	srv, calls := fakeModel(t, sampleAnswer, 0, 0)
	x := newTestExtractor(srv.URL)

	a, err := x.Extract(context.Background(), "I met John at the conference. He works at Google.")
	require.NoError(t, err)
	assert.Equal(t, int32(1), *calls)

	require.Len(t, a.Entities, 2)
	assert.Equal(t, "person", a.Entities[0].EntityType)
	assert.Equal(t, 1.0, a.Entities[0].Confidence)
	assert.Equal(t, "company", a.Entities[1].EntityType)

	require.Len(t, a.Relationships, 2)
	assert.Equal(t, 5, a.Relationships[0].Strength)
	assert.Zero(t, a.Relationships[1].Strength)

	assert.Zero(t, a.ConfidenceScore)
	assert.Len(t, a.ProcessingNotes, 2)
}

func TestExtractAcceptsVersionedBaseURL(t *testing.T) {
	srv, calls := fakeModel(t, sampleAnswer, 0, 0)
	x := newTestExtractor(srv.URL + "/v1/")

	_, err := x.Extract(context.Background(), "I met John.")
	require.NoError(t, err)
	assert.Equal(t, int32(1), *calls)
}

func TestAPIBaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://api.openai.com/v1", "https://api.openai.com/v1"},
		{"https://api.openai.com", "https://api.openai.com/v1"},
		{"http://localhost:8000/", "http://localhost:8000/v1"},
		{"http://localhost:8000/v1/", "http://localhost:8000/v1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, apiBaseURL(tt.in), tt.in)
	}
}

func TestExtractRetriesServerErrors(t *testing.T) {
	srv, calls := fakeModel(t, sampleAnswer, 2, http.StatusBadGateway)
	x := newTestExtractor(srv.URL)

	_, err := x.Extract(context.Background(), "I met John.")
	require.NoError(t, err)
	assert.Equal(t, int32(3), *calls)
}

func TestExtractGivesUpAfterRetries(t *testing.T) {
	srv, calls := fakeModel(t, sampleAnswer, 10, http.StatusServiceUnavailable)
	x := newTestExtractor(srv.URL)

	_, err := x.Extract(context.Background(), "I met John.")
	require.Error(t, err)
	assert.Equal(t, int32(defaultMaxRetries), *calls)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotes))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestExtractDoesNotRetryClientErrors(t *testing.T) {
	srv, calls := fakeModel(t, sampleAnswer, 10, http.StatusBadRequest)
	x := newTestExtractor(srv.URL)

	_, err := x.Extract(context.Background(), "I met John.")
	require.Error(t, err)
	assert.Equal(t, int32(1), *calls)
	assert.False(t, apperrors.IsRetryable(err))
}

func TestExtractRejectsUnparseableAnswer(t *testing.T) {
	srv, _ := fakeModel(t, "I could not find anything.", 0, 0)
	x := newTestExtractor(srv.URL)

	_, err := x.Extract(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotes))
}

func TestExtractRejectsEmptyNote(t *testing.T) {
	x := newTestExtractor("http://127.0.0.1:1")
	_, err := x.Extract(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotes))
}

func TestParseIgnoresSurroundingText(t *testing.T) {
	a, err := Parse(`Here you go: {"entities": [{"name": "AI", "entity_type": "topic"}], "relationships": []} Thanks!`)
	require.NoError(t, err)
	require.Len(t, a.Entities, 1)
	assert.Equal(t, "AI", a.Entities[0].Name)
}

func TestCleanKeepsOwnerReferences(t *testing.T) {
	a := &state.NoteAnalysis{
		Entities: []state.EntityMention{{Name: "Berlin", EntityType: "city"}},
		Relationships: []state.RelationshipMention{
			{FromEntity: "alice", ToEntity: "Berlin", RelationshipType: "LIVES_IN"},
			{FromEntity: "Bob", ToEntity: "Berlin", RelationshipType: "LIVES_IN"},
		},
	}
	Clean(a, "Alice")
	assert.Equal(t, "location", a.Entities[0].EntityType)
	require.Len(t, a.Relationships, 1)
	assert.True(t, strings.EqualFold("alice", a.Relationships[0].FromEntity))
}

func TestSystemPromptNamesOwner(t *testing.T) {
	p := SystemPrompt("Zoë")
	assert.Contains(t, p, `"Zoë"`)
	assert.Contains(t, p, "Zoë met X")
	assert.Contains(t, p, "WORKS_AT|INTERESTED_IN")
}
