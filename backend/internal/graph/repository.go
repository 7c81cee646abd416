package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"network-journal/backend/internal/constants"
	"network-journal/backend/internal/state"
	apperrors "network-journal/backend/pkg/errors"
	"network-journal/backend/pkg/logger"
)

// Repository reads the contact network from Neo4j and writes note analyses into it
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Connect opens a driver and verifies the database is reachable
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	return driver, nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// Stats summarises the network
type Stats struct {
	TotalNodes         int            `json:"total_nodes"`
	NodeTypes          map[string]int `json:"node_types"`
	TotalRelationships int            `json:"total_relationships"`
	RelationshipTypes  map[string]int `json:"relationship_types"`
	RecentInteractions int            `json:"recent_interactions"`
}

const snapshotNodesQuery = `
	MATCH (n)
	WHERE (n:Person OR n:Company OR n:Topic OR n:Event OR n:Location OR n:Interaction)
	  AND n.id IS NOT NULL
	RETURN n.id AS id, labels(n) AS labels, properties(n) AS props
`

const snapshotLinksQuery = `
	MATCH (a)-[r]->(b)
	WHERE a.id IN $ids AND b.id IN $ids
	RETURN a.id AS source, type(r) AS type, b.id AS target, properties(r) AS props
`

// FetchSnapshot reads every entity of the network and the relationships between them
func (r *Repository) FetchSnapshot(ctx context.Context) (*state.Snapshot, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	snap, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (*state.Snapshot, error) {
		nodes, err := readNodes(ctx, tx, snapshotNodesQuery, nil)
		if err != nil {
			return nil, err
		}
		links, err := readLinks(ctx, tx, nodeIDs(nodes))
		if err != nil {
			return nil, err
		}
		return &state.Snapshot{Nodes: nodes, Links: links}, nil
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("fetch snapshot", err)
	}

	r.logger.Debug("Snapshot fetched",
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("links", len(snap.Links)),
	)
	return snap, nil
}

// FetchPersonNetwork reads a person and everything within depth hops of them.
// depth must be between 1 and 5.
func (r *Repository) FetchPersonNetwork(ctx context.Context, personID string, depth int) (*state.Snapshot, error) {
	if depth < 1 || depth > constants.MaxNetworkDepth {
		return nil, apperrors.NewInvalidOption("depth", fmt.Sprint(depth))
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	// variable-length bounds cannot be parameters; depth is validated above
	query := fmt.Sprintf(`
		MATCH (p:Person {id: $personID})
		OPTIONAL MATCH (p)-[*1..%d]-(connected)
		WHERE connected.id IS NOT NULL
		WITH p, collect(DISTINCT connected) AS others
		UNWIND [p] + others AS n
		RETURN DISTINCT n.id AS id, labels(n) AS labels, properties(n) AS props
	`, depth)

	snap, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (*state.Snapshot, error) {
		nodes, err := readNodes(ctx, tx, query, map[string]interface{}{"personID": personID})
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, nil
		}
		links, err := readLinks(ctx, tx, nodeIDs(nodes))
		if err != nil {
			return nil, err
		}
		return &state.Snapshot{Nodes: nodes, Links: links}, nil
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("fetch person network", err)
	}
	if snap == nil {
		return nil, apperrors.NewPersonNotFound(personID)
	}

	r.logger.Debug("Person network fetched",
		zap.String("person_id", personID),
		zap.Int("depth", depth),
		zap.Int("nodes", len(snap.Nodes)),
	)
	return snap, nil
}

// Stats counts nodes per type and relationships per type
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	stats, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (*Stats, error) {
		stats := &Stats{
			NodeTypes:         make(map[string]int),
			RelationshipTypes: make(map[string]int),
		}

		result, err := tx.Run(ctx, `MATCH (n) RETURN labels(n) AS labels, count(n) AS count`, nil)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			count := getIntFromRecord(record, "count")
			stats.NodeTypes[typeFromLabels(getStringSliceFromRecord(record, "labels"))] += count
			stats.TotalNodes += count
		}

		result, err = tx.Run(ctx, `MATCH ()-[r]->() RETURN type(r) AS type, count(r) AS count`, nil)
		if err != nil {
			return nil, err
		}
		records, err = result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			count := getIntFromRecord(record, "count")
			stats.RelationshipTypes[getStringFromRecord(record, "type")] += count
			stats.TotalRelationships += count
		}

		result, err = tx.Run(ctx, `
			MATCH (i:Interaction)
			WHERE i.date >= datetime() - duration({days: 30})
			RETURN count(i) AS recent
		`, nil)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		stats.RecentInteractions = getIntFromRecord(record, "recent")
		return stats, nil
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("network statistics", err)
	}
	return stats, nil
}

func readNodes(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]interface{}) ([]state.SnapshotNode, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]state.SnapshotNode, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		id := getStringFromRecord(record, "id")
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		nodes = append(nodes, snapshotNode(id, getStringSliceFromRecord(record, "labels"), getMapFromRecord(record, "props")))
	}
	return nodes, nil
}

func readLinks(ctx context.Context, tx neo4j.ManagedTransaction, ids []string) ([]state.SnapshotLink, error) {
	if len(ids) == 0 {
		return []state.SnapshotLink{}, nil
	}
	result, err := tx.Run(ctx, snapshotLinksQuery, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	links := make([]state.SnapshotLink, 0, len(records))
	seen := make(map[string]int, len(records))
	for _, record := range records {
		source := getStringFromRecord(record, "source")
		target := getStringFromRecord(record, "target")
		relType := getStringFromRecord(record, "type")
		id := linkID(source, relType, target)
		// parallel relationships of one type get a counter suffix
		if n := seen[id]; n > 0 {
			seen[id] = n + 1
			id = fmt.Sprintf("%s-%d", id, n)
		} else {
			seen[id] = 1
		}
		links = append(links, state.SnapshotLink{
			ID:         id,
			SourceID:   source,
			TargetID:   target,
			Type:       relType,
			Properties: nativeProps(getMapFromRecord(record, "props")),
		})
	}
	return links, nil
}

func nodeIDs(nodes []state.SnapshotNode) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// label returns the database label for an entity type, or "" when unknown
func label(entityType string) string {
	return nodeLabels[strings.ToLower(entityType)]
}
