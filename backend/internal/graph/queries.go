package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"network-journal/backend/internal/constants"
	"network-journal/backend/internal/state"
	apperrors "network-journal/backend/pkg/errors"
)

// PersonDetails is a person with the companies they work at, the places they
// live in and the topics they follow
type PersonDetails struct {
	Person    state.SnapshotNode   `json:"person"`
	Companies []state.SnapshotNode `json:"companies"`
	Locations []state.SnapshotNode `json:"locations"`
	Topics    []state.SnapshotNode `json:"topics"`
}

// RankedNode is an entity with the count it was ranked by
type RankedNode struct {
	Node  state.SnapshotNode `json:"node"`
	Count int                `json:"count"`
}

// Insights summarises who and what the network revolves around
type Insights struct {
	MostConnectedPeople []RankedNode `json:"most_connected_people"`
	TopCompanies        []RankedNode `json:"top_companies"`
	PopularTopics       []RankedNode `json:"popular_topics"`
	RecentInteractions  int          `json:"recent_interactions"`
}

// Path is one route between two people
type Path struct {
	Nodes         []state.SnapshotNode `json:"nodes"`
	Relationships []string             `json:"relationships"`
	Length        int                  `json:"length"`
}

// Cluster is a group of people connected through KNOWS relationships
type Cluster struct {
	Members []state.SnapshotNode `json:"members"`
	Size    int                  `json:"size"`
}

// Recommendation is a person known by the people someone knows
type Recommendation struct {
	Person            state.SnapshotNode `json:"person"`
	MutualConnections int                `json:"mutual_connections"`
}

// Search finds entities whose name, email or industry contains query,
// ignoring case. limit must be between 1 and 100.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]state.SnapshotNode, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewInvalidOption("query", query)
	}
	if limit < 1 || limit > constants.MaxSearchLimit {
		return nil, apperrors.NewInvalidOption("limit", fmt.Sprint(limit))
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	nodes, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) ([]state.SnapshotNode, error) {
		return readNodes(ctx, tx, `
			MATCH (n)
			WHERE n.id IS NOT NULL AND (
			      toLower(coalesce(n.name, '')) CONTAINS $query
			   OR toLower(coalesce(n.email, '')) CONTAINS $query
			   OR toLower(coalesce(n.industry, '')) CONTAINS $query)
			RETURN n.id AS id, labels(n) AS labels, properties(n) AS props
			ORDER BY n.name
			LIMIT $limit
		`, map[string]interface{}{"query": strings.ToLower(query), "limit": limit})
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("search network", err)
	}
	return nodes, nil
}

// PersonDetails reads a person with their employers, home locations and interests
func (r *Repository) PersonDetails(ctx context.Context, personID string) (*PersonDetails, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	details, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (*PersonDetails, error) {
		result, err := tx.Run(ctx, `
			MATCH (p:Person {id: $personID})
			OPTIONAL MATCH (p)-[:WORKS_AT]->(c:Company)
			WITH p, collect(DISTINCT c) AS companies
			OPTIONAL MATCH (p)-[:LIVES_IN]->(l:Location)
			WITH p, companies, collect(DISTINCT l) AS locations
			OPTIONAL MATCH (p)-[:INTERESTED_IN]->(t:Topic)
			WITH p, companies, locations, collect(DISTINCT t) AS topics
			RETURN {id: p.id, labels: labels(p), props: properties(p)} AS person,
			       [c IN companies | {id: c.id, labels: labels(c), props: properties(c)}] AS companies,
			       [l IN locations | {id: l.id, labels: labels(l), props: properties(l)}] AS locations,
			       [t IN topics | {id: t.id, labels: labels(t), props: properties(t)}] AS topics
		`, map[string]interface{}{"personID": personID})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}
		record := records[0]
		person, _ := record.Get("person")
		node, ok := nodeFromValue(person)
		if !ok {
			return nil, nil
		}
		companies, _ := record.Get("companies")
		locations, _ := record.Get("locations")
		topics, _ := record.Get("topics")
		return &PersonDetails{
			Person:    node,
			Companies: nodesFromValue(companies),
			Locations: nodesFromValue(locations),
			Topics:    nodesFromValue(topics),
		}, nil
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("person details", err)
	}
	if details == nil {
		return nil, apperrors.NewPersonNotFound(personID)
	}
	return details, nil
}

// Insights ranks the most connected people, the companies with the most
// current employees and the topics with the most followers
func (r *Repository) Insights(ctx context.Context) (*Insights, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	params := map[string]interface{}{"limit": constants.InsightsTopN}
	insights, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (*Insights, error) {
		insights := &Insights{}
		var err error

		insights.MostConnectedPeople, err = readRanked(ctx, tx, `
			MATCH (n:Person)-[r]-()
			WHERE n.id IS NOT NULL
			WITH n, count(r) AS count
			ORDER BY count DESC, n.name
			LIMIT $limit
			RETURN n.id AS id, labels(n) AS labels, properties(n) AS props, count
		`, params)
		if err != nil {
			return nil, err
		}

		// open-ended employment only
		insights.TopCompanies, err = readRanked(ctx, tx, `
			MATCH (:Person)-[w:WORKS_AT]->(n:Company)
			WHERE w.end_date IS NULL AND n.id IS NOT NULL
			WITH n, count(w) AS count
			ORDER BY count DESC, n.name
			LIMIT $limit
			RETURN n.id AS id, labels(n) AS labels, properties(n) AS props, count
		`, params)
		if err != nil {
			return nil, err
		}

		insights.PopularTopics, err = readRanked(ctx, tx, `
			MATCH (:Person)-[i:INTERESTED_IN]->(n:Topic)
			WHERE n.id IS NOT NULL
			WITH n, count(i) AS count
			ORDER BY count DESC, n.name
			LIMIT $limit
			RETURN n.id AS id, labels(n) AS labels, properties(n) AS props, count
		`, params)
		if err != nil {
			return nil, err
		}

		result, err := tx.Run(ctx, `
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
		insights.RecentInteractions = getIntFromRecord(record, "recent")
		return insights, nil
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("network insights", err)
	}
	return insights, nil
}

// Paths finds up to ten routes of at most maxLength hops between two people,
// shortest first. maxLength must be between 1 and 6.
func (r *Repository) Paths(ctx context.Context, fromID, toID string, maxLength int) ([]Path, error) {
	if maxLength < 1 || maxLength > constants.MaxPathLength {
		return nil, apperrors.NewInvalidOption("max_length", fmt.Sprint(maxLength))
	}
	if fromID == "" || toID == "" || fromID == toID {
		return nil, apperrors.NewInvalidOption("path endpoints", fromID+"->"+toID)
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	// variable-length bounds cannot be parameters; maxLength is validated above
	query := fmt.Sprintf(`
		MATCH path = (a:Person {id: $fromID})-[*1..%d]-(b:Person {id: $toID})
		WITH path, length(path) AS length
		ORDER BY length
		LIMIT %d
		RETURN [n IN nodes(path) | {id: n.id, labels: labels(n), props: properties(n)}] AS nodes,
		       [rel IN relationships(path) | type(rel)] AS types,
		       length
	`, maxLength, constants.MaxPaths)

	paths, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) ([]Path, error) {
		result, err := tx.Run(ctx, query, map[string]interface{}{"fromID": fromID, "toID": toID})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		paths := make([]Path, 0, len(records))
		for _, record := range records {
			nodes, _ := record.Get("nodes")
			paths = append(paths, Path{
				Nodes:         nodesFromValue(nodes),
				Relationships: getStringSliceFromRecord(record, "types"),
				Length:        getIntFromRecord(record, "length"),
			})
		}
		return paths, nil
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("network paths", err)
	}
	return paths, nil
}

// Clusters groups people into the connected components of the KNOWS
// relationship, largest first
func (r *Repository) Clusters(ctx context.Context) ([]Cluster, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	type knows struct {
		people []state.SnapshotNode
		pairs  [][2]string
	}
	k, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (*knows, error) {
		people, err := readNodes(ctx, tx, `
			MATCH (n:Person)
			WHERE n.id IS NOT NULL
			RETURN n.id AS id, labels(n) AS labels, properties(n) AS props
		`, nil)
		if err != nil {
			return nil, err
		}
		result, err := tx.Run(ctx, `
			MATCH (a:Person)-[:KNOWS]->(b:Person)
			WHERE a.id IS NOT NULL AND b.id IS NOT NULL
			RETURN a.id AS source, b.id AS target
		`, nil)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		pairs := make([][2]string, 0, len(records))
		for _, record := range records {
			pairs = append(pairs, [2]string{getStringFromRecord(record, "source"), getStringFromRecord(record, "target")})
		}
		return &knows{people: people, pairs: pairs}, nil
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("network clusters", err)
	}

	clusters := groupComponents(k.people, k.pairs)
	r.logger.Debug("Clusters computed",
		zap.Int("people", len(k.people)),
		zap.Int("clusters", len(clusters)),
	)
	return clusters, nil
}

// Recommendations suggests people known by the people personID knows, ranked
// by how many of those mutual connections they share. limit must be between 1 and 20.
func (r *Repository) Recommendations(ctx context.Context, personID string, limit int) ([]Recommendation, error) {
	if limit < 1 || limit > constants.MaxRecommendationLimit {
		return nil, apperrors.NewInvalidOption("limit", fmt.Sprint(limit))
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	recs, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) ([]Recommendation, error) {
		ranked, err := readRanked(ctx, tx, `
			MATCH (p:Person {id: $personID})-[:KNOWS]->(friend:Person)-[:KNOWS]->(n:Person)
			WHERE n.id <> $personID AND NOT (p)-[:KNOWS]->(n)
			WITH n, count(DISTINCT friend) AS count
			ORDER BY count DESC, n.name
			LIMIT $limit
			RETURN n.id AS id, labels(n) AS labels, properties(n) AS props, count
		`, map[string]interface{}{"personID": personID, "limit": limit})
		if err != nil {
			return nil, err
		}
		recs := make([]Recommendation, len(ranked))
		for i, rn := range ranked {
			recs[i] = Recommendation{Person: rn.Node, MutualConnections: rn.Count}
		}
		return recs, nil
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("network recommendations", err)
	}
	return recs, nil
}

func readRanked(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]interface{}) ([]RankedNode, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	ranked := make([]RankedNode, 0, len(records))
	for _, record := range records {
		id := getStringFromRecord(record, "id")
		if id == "" {
			continue
		}
		ranked = append(ranked, RankedNode{
			Node:  snapshotNode(id, getStringSliceFromRecord(record, "labels"), getMapFromRecord(record, "props")),
			Count: getIntFromRecord(record, "count"),
		})
	}
	return ranked, nil
}

func snapshotNode(id string, labels []string, raw map[string]interface{}) state.SnapshotNode {
	nodeType := typeFromLabels(labels)
	return state.SnapshotNode{
		ID:         id,
		Label:      NodeLabel(nodeType, id, raw),
		Type:       nodeType,
		Properties: nativeProps(raw),
	}
}

// nodeFromValue reads a {id, labels, props} map built by a Cypher projection
func nodeFromValue(v interface{}) (state.SnapshotNode, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return state.SnapshotNode{}, false
	}
	id, _ := m["id"].(string)
	if id == "" {
		return state.SnapshotNode{}, false
	}
	var labels []string
	if raw, ok := m["labels"].([]interface{}); ok {
		for _, l := range raw {
			if s, ok := l.(string); ok {
				labels = append(labels, s)
			}
		}
	}
	props, _ := m["props"].(map[string]interface{})
	if props == nil {
		props = map[string]interface{}{}
	}
	return snapshotNode(id, labels, props), true
}

func nodesFromValue(v interface{}) []state.SnapshotNode {
	list, _ := v.([]interface{})
	nodes := make([]state.SnapshotNode, 0, len(list))
	for _, e := range list {
		if n, ok := nodeFromValue(e); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// groupComponents partitions people by the undirected pairs joining them.
// Pairs naming unknown people are ignored. Clusters come largest first, ties
// broken by the first member's ID, and members are sorted by ID.
func groupComponents(people []state.SnapshotNode, pairs [][2]string) []Cluster {
	index := make(map[string]int, len(people))
	for i, p := range people {
		index[p.ID] = i
	}
	parent := make([]int, len(people))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for _, pair := range pairs {
		a, okA := index[pair[0]]
		b, okB := index[pair[1]]
		if !okA || !okB {
			continue
		}
		if ra, rb := find(a), find(b); ra != rb {
			parent[rb] = ra
		}
	}

	groups := make(map[int][]state.SnapshotNode)
	for i, p := range people {
		root := find(i)
		groups[root] = append(groups[root], p)
	}
	clusters := make([]Cluster, 0, len(groups))
	for _, members := range groups {
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		clusters = append(clusters, Cluster{Members: members, Size: len(members)})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Size != clusters[j].Size {
			return clusters[i].Size > clusters[j].Size
		}
		return clusters[i].Members[0].ID < clusters[j].Members[0].ID
	})
	return clusters
}
