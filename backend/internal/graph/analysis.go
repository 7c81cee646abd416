package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"network-journal/backend/internal/state"
	apperrors "network-journal/backend/pkg/errors"
)

// Default relationship properties when a note does not state them
const (
	defaultKnowsStrength = 3
	defaultKnowsType     = "acquaintance"
	defaultRole          = "Unknown"
)

// Pronouns a note uses to refer to its owner
var ownerAliases = []string{"i", "me", "myself"}

// AppliedEntity is one entity written from an analysis
type AppliedEntity struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

// AppliedRelationship is one relationship written from an analysis
type AppliedRelationship struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// ApplyResult reports what ApplyAnalysis wrote
type ApplyResult struct {
	OwnerID       string                `json:"owner_id"`
	Entities      []AppliedEntity       `json:"entities"`
	Relationships []AppliedRelationship `json:"relationships"`
	Skipped       []string              `json:"skipped,omitempty"`
}

type entityWrite struct {
	name  string
	kind  string
	props map[string]interface{}
}

type relationshipWrite struct {
	from, to string
	relType  string
	props    map[string]interface{}
}

type writePlan struct {
	entities      []entityWrite
	relationships []relationshipWrite
	skipped       []string
}

// planAnalysis decides what to write for an analysis. Relationship endpoints
// are entity names; the owner is referred to by ownerName.
func planAnalysis(analysis *state.NoteAnalysis, ownerName string, now time.Time) writePlan {
	var plan writePlan
	known := map[string]string{strings.ToLower(ownerName): ownerName}
	for _, alias := range ownerAliases {
		known[alias] = ownerName
	}

	for _, e := range analysis.Entities {
		name := strings.TrimSpace(e.Name)
		kind := state.NormalizeEntityType(e.EntityType)
		switch {
		case name == "":
			plan.skipped = append(plan.skipped, "entity with empty name")
			continue
		case kind == "":
			plan.skipped = append(plan.skipped, fmt.Sprintf("entity %q has unknown type %q", name, e.EntityType))
			continue
		}
		if _, dup := known[strings.ToLower(name)]; dup {
			continue
		}
		known[strings.ToLower(name)] = name

		props := scalarProps(e.Properties)
		if e.Context != "" {
			props["source_context"] = e.Context
		}
		plan.entities = append(plan.entities, entityWrite{name: name, kind: kind, props: props})
	}

	for _, rel := range analysis.Relationships {
		from, okFrom := known[strings.ToLower(strings.TrimSpace(rel.FromEntity))]
		to, okTo := known[strings.ToLower(strings.TrimSpace(rel.ToEntity))]
		relType, okType := NormalizeRelationshipType(rel.RelationshipType)
		switch {
		case !okFrom || !okTo:
			plan.skipped = append(plan.skipped, fmt.Sprintf("%s -> %s: unknown entity", rel.FromEntity, rel.ToEntity))
			continue
		case !okType:
			plan.skipped = append(plan.skipped, fmt.Sprintf("%s -> %s: unsupported relationship %q", rel.FromEntity, rel.ToEntity, rel.RelationshipType))
			continue
		case strings.EqualFold(from, to):
			continue
		}

		props := scalarProps(rel.Properties)
		if rel.Context != "" {
			props["context"] = rel.Context
		}
		switch relType {
		case "KNOWS":
			if rel.Strength > 0 {
				props["strength"] = rel.Strength
			} else {
				props["strength"] = defaultKnowsStrength
			}
			if _, ok := props["type"]; !ok {
				props["type"] = defaultKnowsType
			}
		case "WORKS_AT":
			if _, ok := props["role"]; !ok {
				props["role"] = defaultRole
			}
			if _, ok := props["start_date"]; !ok {
				props["start_date"] = now.UTC().Format(time.RFC3339)
			}
		default:
			if rel.Strength > 0 {
				props["strength"] = rel.Strength
			}
		}
		plan.relationships = append(plan.relationships, relationshipWrite{from: from, to: to, relType: relType, props: props})
	}
	return plan
}

// ApplyAnalysis writes the entities and relationships of a note analysis.
// Entities are matched by name (city for locations) case-insensitively and
// created when missing; the owner person is created if it does not exist.
func (r *Repository) ApplyAnalysis(ctx context.Context, analysis *state.NoteAnalysis, ownerName string) (*ApplyResult, error) {
	plan := planAnalysis(analysis, ownerName, time.Now())

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	res, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (*ApplyResult, error) {
		res := &ApplyResult{Skipped: plan.skipped}
		ids := make(map[string]string, len(plan.entities)+1)

		ownerID, created, err := upsertEntity(ctx, tx, "person", ownerName, map[string]interface{}{
			"notes":             "Main person in the network",
			"source_of_contact": "System",
		})
		if err != nil {
			return nil, err
		}
		res.OwnerID = ownerID
		ids[strings.ToLower(ownerName)] = ownerID
		if created {
			res.Entities = append(res.Entities, AppliedEntity{Name: ownerName, Type: "person", ID: ownerID, Created: true})
		}

		for _, e := range plan.entities {
			id, created, err := upsertEntity(ctx, tx, e.kind, e.name, e.props)
			if err != nil {
				return nil, err
			}
			ids[strings.ToLower(e.name)] = id
			res.Entities = append(res.Entities, AppliedEntity{Name: e.name, Type: e.kind, ID: id, Created: created})
		}

		for _, rel := range plan.relationships {
			// relationship types cannot be parameters; relType is from RelationshipTypes
			query := fmt.Sprintf(`
				MATCH (a {id: $from}), (b {id: $to})
				MERGE (a)-[r:%s]->(b)
				SET r += $props
			`, rel.relType)
			_, err := tx.Run(ctx, query, map[string]interface{}{
				"from":  ids[strings.ToLower(rel.from)],
				"to":    ids[strings.ToLower(rel.to)],
				"props": rel.props,
			})
			if err != nil {
				return nil, err
			}
			res.Relationships = append(res.Relationships, AppliedRelationship{From: rel.from, To: rel.to, Type: rel.relType})
		}
		return res, nil
	})
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("apply note analysis", err)
	}

	r.logger.Info("Note analysis applied",
		zap.String("owner_id", res.OwnerID),
		zap.Int("entities", len(res.Entities)),
		zap.Int("relationships", len(res.Relationships)),
		zap.Int("skipped", len(res.Skipped)),
	)
	for _, s := range res.Skipped {
		r.logger.Warn("Skipped part of note analysis", zap.String("reason", s))
	}
	return res, nil
}

// upsertEntity returns the id of the entity with the given name, creating it when missing
func upsertEntity(ctx context.Context, tx neo4j.ManagedTransaction, kind, name string, props map[string]interface{}) (string, bool, error) {
	lbl := label(kind)
	key := nameKey(kind)

	result, err := tx.Run(ctx, fmt.Sprintf(`
		MATCH (n:%s)
		WHERE toLower(n.%s) = toLower($name)
		RETURN n.id AS id
		LIMIT 1
	`, lbl, key), map[string]interface{}{"name": name})
	if err != nil {
		return "", false, err
	}
	if result.Next(ctx) {
		return getStringFromRecord(result.Record(), "id"), false, nil
	}
	if err := result.Err(); err != nil {
		return "", false, err
	}

	id := uuid.New().String()
	_, err = tx.Run(ctx, fmt.Sprintf(`
		CREATE (n:%s {id: $id, %s: $name, created_at: datetime(), data_source: 'note'})
		SET n += $props
	`, lbl, key), map[string]interface{}{
		"id":    id,
		"name":  name,
		"props": props,
	})
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}
