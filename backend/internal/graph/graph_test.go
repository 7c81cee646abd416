package graph

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-journal/backend/internal/state"
	apperrors "network-journal/backend/pkg/errors"
)

func TestInteractionLabel(t *testing.T) {
	date := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		props map[string]interface{}
		want  string
	}{
		{
			name:  "short summary",
			props: map[string]interface{}{"summary": "Coffee chat", "channel": "in_person", "date": date},
			want:  "Coffee chat (2024-03-09)",
		},
		{
			name:  "long summary is cut",
			props: map[string]interface{}{"summary": "Discussed the roadmap for the next quarter", "date": date},
			want:  "Discussed the roadmap for the ... (2024-03-09)",
		},
		{
			name:  "channel name",
			props: map[string]interface{}{"channel": "video_call", "date": "2024-03-09T10:00:00Z"},
			want:  "Video Call (2024-03-09)",
		},
		{
			name:  "unknown channel is title cased",
			props: map[string]interface{}{"channel": "carrier_pigeon", "date": dbtype.Date(date)},
			want:  "Carrier_Pigeon (2024-03-09)",
		},
		{
			name:  "unparseable date",
			props: map[string]interface{}{"channel": "call", "date": "last week"},
			want:  "call - last week",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InteractionLabel(tt.props))
		})
	}
}

func TestNodeLabel(t *testing.T) {
	assert.Equal(t, "Berlin", NodeLabel("location", "l1", map[string]interface{}{"city": "Berlin", "name": "HQ"}))
	assert.Equal(t, "Acme", NodeLabel("company", "c1", map[string]interface{}{"name": "Acme"}))
	assert.Equal(t, "p1", NodeLabel("person", "p1", map[string]interface{}{}))
}

func TestTypeFromLabels(t *testing.T) {
	assert.Equal(t, "company", typeFromLabels([]string{"Company"}))
	assert.Equal(t, "person", typeFromLabels([]string{"Imported", "Person"}))
	assert.Equal(t, "agent", typeFromLabels([]string{"Agent"}))
	assert.Equal(t, "unknown", typeFromLabels(nil))
}

func TestNormalizeRelationshipType(t *testing.T) {
	got, ok := NormalizeRelationshipType("works at")
	assert.True(t, ok)
	assert.Equal(t, "WORKS_AT", got)

	_, ok = NormalizeRelationshipType("INTRODUCED; DROP")
	assert.False(t, ok)
}

func TestNativeValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	props := nativeProps(map[string]interface{}{
		"when":  ts,
		"day":   dbtype.Date(ts),
		"tags":  []interface{}{"a", dbtype.Date(ts)},
		"count": int64(3),
	})
	assert.Equal(t, "2024-01-02T03:04:05Z", props["when"])
	assert.Equal(t, "2024-01-02", props["day"])
	assert.Equal(t, []interface{}{"a", "2024-01-02"}, props["tags"])
	assert.Equal(t, int64(3), props["count"])
}

func TestPlanAnalysis(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	analysis := &state.NoteAnalysis{
		Entities: []state.EntityMention{
			{Name: "John", EntityType: "person", Confidence: 0.9, Context: "met at the conference"},
			{Name: "Google", EntityType: "Organization", Properties: map[string]interface{}{"industry": "tech", "nested": map[string]interface{}{"x": 1}}},
			{Name: "AI", EntityType: "topic"},
			{Name: "alice", EntityType: "person"},
			{Name: "Thing", EntityType: "gadget"},
		},
		Relationships: []state.RelationshipMention{
			{FromEntity: "I", ToEntity: "John", RelationshipType: "knows"},
			{FromEntity: "John", ToEntity: "Google", RelationshipType: "WORKS_AT"},
			{FromEntity: "John", ToEntity: "AI", RelationshipType: "interested in", Strength: 4},
			{FromEntity: "John", ToEntity: "Mars", RelationshipType: "KNOWS"},
			{FromEntity: "John", ToEntity: "AI", RelationshipType: "DISLIKES"},
		},
	}

	plan := planAnalysis(analysis, "Alice", now)

	require.Len(t, plan.entities, 3)
	assert.Equal(t, "John", plan.entities[0].name)
	assert.Equal(t, "met at the conference", plan.entities[0].props["source_context"])
	assert.Equal(t, "company", plan.entities[1].kind)
	assert.Equal(t, "tech", plan.entities[1].props["industry"])
	assert.NotContains(t, plan.entities[1].props, "nested")

	require.Len(t, plan.relationships, 3)
	knows := plan.relationships[0]
	assert.Equal(t, "Alice", knows.from)
	assert.Equal(t, "KNOWS", knows.relType)
	assert.Equal(t, defaultKnowsStrength, knows.props["strength"])
	assert.Equal(t, defaultKnowsType, knows.props["type"])

	worksAt := plan.relationships[1]
	assert.Equal(t, defaultRole, worksAt.props["role"])
	assert.Equal(t, "2024-05-01T00:00:00Z", worksAt.props["start_date"])

	assert.Equal(t, "INTERESTED_IN", plan.relationships[2].relType)
	assert.Equal(t, 4, plan.relationships[2].props["strength"])

	assert.Len(t, plan.skipped, 3)
}

// The tests below require a running Neo4j instance.
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD environment variables.

func TestRepository_ApplyAndFetch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver := createTestDriver(t)
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	owner := "Owner " + time.Now().Format("20060102150405")
	friend := "Friend " + time.Now().Format("20060102150405")

	defer func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (p:Person) WHERE p.name IN $names DETACH DELETE p",
			map[string]interface{}{"names": []string{owner, friend}})
	}()

	res, err := repo.ApplyAnalysis(ctx, &state.NoteAnalysis{
		Entities:      []state.EntityMention{{Name: friend, EntityType: "person"}},
		Relationships: []state.RelationshipMention{{FromEntity: "me", ToEntity: friend, RelationshipType: "KNOWS"}},
	}, owner)
	require.NoError(t, err)
	require.NotEmpty(t, res.OwnerID)
	assert.Len(t, res.Relationships, 1)

	again, err := repo.ApplyAnalysis(ctx, &state.NoteAnalysis{}, owner)
	require.NoError(t, err)
	assert.Equal(t, res.OwnerID, again.OwnerID)

	snap, err := repo.FetchPersonNetwork(ctx, res.OwnerID, 1)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Links, 1)

	_, err = repo.FetchPersonNetwork(ctx, "no-such-person", 1)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeGraph))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.NodeTypes["person"], 2)
}

func TestRepository_FetchPersonNetworkDepth(t *testing.T) {
	repo := NewRepository(nil)
	_, err := repo.FetchPersonNetwork(context.Background(), "p1", 6)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeLayout))
}

func createTestDriver(t *testing.T) neo4j.DriverWithContext {
	t.Helper()
	uri := envOr("NEO4J_URI", "bolt://localhost:7687")
	driver, err := Connect(context.Background(), uri, envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASSWORD", "password"))
	if err != nil {
		t.Skipf("Neo4j not reachable: %v", err)
	}
	return driver
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
