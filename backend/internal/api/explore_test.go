package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-journal/backend/internal/constants"
	"network-journal/backend/internal/graph"
	"network-journal/backend/internal/state"
	apperrors "network-journal/backend/pkg/errors"
)

func (f *fakeSource) Search(_ context.Context, query string, limit int) ([]state.SnapshotNode, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewInvalidOption("query", query)
	}
	if limit < 1 || limit > constants.MaxSearchLimit {
		return nil, apperrors.NewInvalidOption("limit", "out of range")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []state.SnapshotNode
	for _, n := range f.snap.Nodes {
		if strings.Contains(strings.ToLower(n.Label), strings.ToLower(query)) && len(found) < limit {
			found = append(found, n)
		}
	}
	return found, nil
}

func (f *fakeSource) PersonDetails(_ context.Context, id string) (*graph.PersonDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.snap.NodeByID(id)
	if !ok || n.Type != "person" {
		return nil, apperrors.NewPersonNotFound(id)
	}
	details := &graph.PersonDetails{Person: n}
	for _, l := range f.snap.Links {
		if l.SourceID == id && l.Type == "WORKS_AT" {
			c, _ := f.snap.NodeByID(l.TargetID)
			details.Companies = append(details.Companies, c)
		}
	}
	return details, nil
}

func (f *fakeSource) Insights(context.Context) (*graph.Insights, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bob, _ := f.snap.NodeByID("bob")
	return &graph.Insights{MostConnectedPeople: []graph.RankedNode{{Node: bob, Count: 2}}}, nil
}

func (f *fakeSource) Paths(_ context.Context, from, to string, maxLength int) ([]graph.Path, error) {
	if maxLength < 1 || maxLength > constants.MaxPathLength {
		return nil, apperrors.NewInvalidOption("max_length", "out of range")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, okA := f.snap.NodeByID(from)
	b, okB := f.snap.NodeByID(to)
	if !okA || !okB {
		return []graph.Path{}, nil
	}
	return []graph.Path{{Nodes: []state.SnapshotNode{a, b}, Relationships: []string{"KNOWS"}, Length: 1}}, nil
}

func (f *fakeSource) Clusters(context.Context) ([]graph.Cluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var people []state.SnapshotNode
	for _, n := range f.snap.Nodes {
		if n.Type == "person" {
			people = append(people, n)
		}
	}
	return []graph.Cluster{{Members: people, Size: len(people)}}, nil
}

func (f *fakeSource) Recommendations(_ context.Context, id string, limit int) ([]graph.Recommendation, error) {
	if limit < 1 || limit > constants.MaxRecommendationLimit {
		return nil, apperrors.NewInvalidOption("limit", "out of range")
	}
	return []graph.Recommendation{}, nil
}

func decodeJSON(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestSearchEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{snap: sampleSnapshot()})
	router := s.Router()

	w := do(t, router, "GET", "/api/graph/search?q=BO", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "BO", body["query"])
	assert.EqualValues(t, 1, body["count"])

	w = do(t, router, "GET", "/api/graph/search", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, "GET", "/api/graph/search?q=a&limit=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, "GET", "/api/graph/search?q=a&limit=many", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPersonDetailsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{snap: sampleSnapshot()})
	router := s.Router()

	w := do(t, router, "GET", "/api/graph/person/bob/details", "")
	require.Equal(t, http.StatusOK, w.Code)
	var details graph.PersonDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "bob", details.Person.ID)
	require.Len(t, details.Companies, 1)
	assert.Equal(t, "acme", details.Companies[0].ID)

	w = do(t, router, "GET", "/api/graph/person/nobody/details", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the network route still answers alongside the details route
	w = do(t, router, "GET", "/api/graph/person/bob?depth=1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPathsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{snap: sampleSnapshot()})
	router := s.Router()

	w := do(t, router, "GET", "/api/graph/paths?from=alice&to=bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w.Body.Bytes())
	assert.EqualValues(t, 1, body["count"])

	w = do(t, router, "GET", "/api/graph/paths?from=alice&to=bob&max_length=7", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExploreEndpoints(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{snap: sampleSnapshot()})
	router := s.Router()

	w := do(t, router, "GET", "/api/graph/insights", "")
	require.Equal(t, http.StatusOK, w.Code)
	var insights graph.Insights
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insights))
	require.Len(t, insights.MostConnectedPeople, 1)
	assert.Equal(t, 2, insights.MostConnectedPeople[0].Count)

	w = do(t, router, "GET", "/api/graph/clusters", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeJSON(t, w.Body.Bytes())["count"])

	w = do(t, router, "GET", "/api/graph/recommendations/alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w.Body.Bytes())
	assert.Equal(t, "alice", body["person_id"])
	assert.EqualValues(t, 0, body["count"])

	w = do(t, router, "GET", "/api/graph/recommendations/alice?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExploreEndpointsWithoutDataSource(t *testing.T) {
	s, _ := newTestServer(t, nil)
	router := s.Router()

	for _, path := range []string{
		"/api/graph/search?q=a",
		"/api/graph/insights",
		"/api/graph/paths?from=a&to=b",
		"/api/graph/clusters",
		"/api/graph/recommendations/a",
		"/api/graph/person/a/details",
	} {
		w := do(t, router, "GET", path, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}
