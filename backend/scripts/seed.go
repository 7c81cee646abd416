package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"network-journal/backend/internal/graph"
	"network-journal/backend/internal/state"
	"network-journal/backend/pkg/config"
	"network-journal/backend/pkg/logger"
)

// sampleInteraction is one logged contact between the owner and a person
type sampleInteraction struct {
	with     string
	channel  string
	summary  string
	daysAgo  int
	location string
}

func main() {
	reset := flag.Bool("reset", false, "Delete all nodes and relationships before seeding")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development", ""); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer driver.Close(ctx)

	if *reset {
		log.Warn("Deleting all data from Neo4j")
		if err := deleteAllData(ctx, driver); err != nil {
			log.Fatal("Failed to delete all data", zap.Error(err))
		}
	}

	log.Info("Creating constraints and indexes...")
	if err := createSchema(ctx, driver); err != nil {
		log.Warn("Failed to create some constraints or indexes (may already exist)", zap.Error(err))
	}

	repo := graph.NewRepository(driver)
	for i, note := range sampleNotes(cfg.OwnerName) {
		res, err := repo.ApplyAnalysis(ctx, note, cfg.OwnerName)
		if err != nil {
			log.Fatal("Failed to apply sample note", zap.Int("note", i), zap.Error(err))
		}
		log.Info("Sample note applied",
			zap.Int("note", i),
			zap.Int("entities", len(res.Entities)),
			zap.Int("relationships", len(res.Relationships)),
		)
	}

	now := time.Now()
	for _, in := range sampleInteractions() {
		if err := createInteraction(ctx, driver, cfg.OwnerName, in, now); err != nil {
			log.Fatal("Failed to create interaction", zap.String("with", in.with), zap.Error(err))
		}
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		log.Fatal("Failed to verify seed", zap.Error(err))
	}
	log.Info("Seed completed",
		zap.Int("nodes", stats.TotalNodes),
		zap.Int("relationships", stats.TotalRelationships),
		zap.Int("recent_interactions", stats.RecentInteractions),
	)
}

// sampleNotes describes a small network around owner in the shape the note
// extractor produces
func sampleNotes(owner string) []*state.NoteAnalysis {
	return []*state.NoteAnalysis{
		{
			Entities: []state.EntityMention{
				{Name: "Bob Martin", EntityType: "person", Confidence: 1, Context: "colleague from the platform team"},
				{Name: "Carol Diaz", EntityType: "person", Confidence: 1, Context: "design lead"},
				{Name: "Acme Corp", EntityType: "company", Confidence: 1, Properties: map[string]interface{}{"industry": "Software"}},
				{Name: "Distributed Systems", EntityType: "topic", Confidence: 1},
			},
			Relationships: []state.RelationshipMention{
				{FromEntity: owner, ToEntity: "Bob Martin", RelationshipType: "KNOWS", Strength: 5,
					Properties: map[string]interface{}{"type": "colleague"}},
				{FromEntity: owner, ToEntity: "Carol Diaz", RelationshipType: "KNOWS", Strength: 4,
					Properties: map[string]interface{}{"type": "colleague"}},
				{FromEntity: owner, ToEntity: "Acme Corp", RelationshipType: "WORKS_AT",
					Properties: map[string]interface{}{"role": "Engineer"}},
				{FromEntity: "Bob Martin", ToEntity: "Acme Corp", RelationshipType: "WORKS_AT",
					Properties: map[string]interface{}{"role": "Staff Engineer"}},
				{FromEntity: "Carol Diaz", ToEntity: "Acme Corp", RelationshipType: "WORKS_AT",
					Properties: map[string]interface{}{"role": "Design Lead"}},
				{FromEntity: owner, ToEntity: "Distributed Systems", RelationshipType: "INTERESTED_IN"},
				{FromEntity: "Bob Martin", ToEntity: "Distributed Systems", RelationshipType: "INTERESTED_IN"},
			},
		},
		{
			Entities: []state.EntityMention{
				{Name: "Dana Kim", EntityType: "person", Confidence: 0.9, Context: "met at the meetup"},
				{Name: "Evan Roy", EntityType: "person", Confidence: 0.9},
				{Name: "Gopher Meetup", EntityType: "event", Confidence: 1},
				{Name: "Berlin", EntityType: "location", Confidence: 1, Properties: map[string]interface{}{"country": "Germany"}},
				{Name: "Lisbon", EntityType: "location", Confidence: 1, Properties: map[string]interface{}{"country": "Portugal"}},
				{Name: "Northwind", EntityType: "company", Confidence: 0.8},
				{Name: "Photography", EntityType: "topic", Confidence: 1},
			},
			Relationships: []state.RelationshipMention{
				{FromEntity: owner, ToEntity: "Dana Kim", RelationshipType: "KNOWS", Strength: 2},
				{FromEntity: "Dana Kim", ToEntity: "Evan Roy", RelationshipType: "KNOWS", Strength: 4,
					Properties: map[string]interface{}{"type": "friend"}},
				{FromEntity: "Bob Martin", ToEntity: "Dana Kim", RelationshipType: "KNOWS"},
				{FromEntity: owner, ToEntity: "Gopher Meetup", RelationshipType: "ATTENDED"},
				{FromEntity: "Dana Kim", ToEntity: "Gopher Meetup", RelationshipType: "ATTENDED"},
				{FromEntity: "Gopher Meetup", ToEntity: "Berlin", RelationshipType: "LOCATED_AT"},
				{FromEntity: owner, ToEntity: "Berlin", RelationshipType: "LIVES_IN"},
				{FromEntity: "Evan Roy", ToEntity: "Lisbon", RelationshipType: "LIVES_IN"},
				{FromEntity: "Evan Roy", ToEntity: "Northwind", RelationshipType: "WORKS_AT",
					Properties: map[string]interface{}{"role": "Founder"}},
				{FromEntity: "Evan Roy", ToEntity: "Photography", RelationshipType: "INTERESTED_IN"},
				{FromEntity: "Carol Diaz", ToEntity: "Photography", RelationshipType: "INTERESTED_IN"},
			},
		},
	}
}

func sampleInteractions() []sampleInteraction {
	return []sampleInteraction{
		{with: "Bob Martin", channel: "in_person", summary: "Planned the queue migration over lunch", daysAgo: 3},
		{with: "Carol Diaz", channel: "video_call", summary: "Design review", daysAgo: 9},
		{with: "Dana Kim", channel: "in_person", summary: "Talked about a possible joint talk at the next meetup", daysAgo: 21, location: "Berlin"},
		{with: "Evan Roy", channel: "email", daysAgo: 64},
	}
}

// createInteraction records an interaction between owner and in.with. Both
// persons must already exist.
func createInteraction(ctx context.Context, driver neo4j.DriverWithContext, owner string, in sampleInteraction, now time.Time) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	id := uuid.New().String()
	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, `
			MATCH (o:Person), (p:Person)
			WHERE toLower(o.name) = toLower($owner) AND toLower(p.name) = toLower($with)
			CREATE (i:Interaction {
				id: $id,
				channel: $channel,
				summary: $summary,
				date: datetime($date),
				created_at: datetime(),
				data_source: 'seed'
			})
			CREATE (o)-[:PARTICIPATED_IN]->(i)
			CREATE (p)-[:PARTICIPATED_IN]->(i)
			RETURN i.id AS id
		`, map[string]interface{}{
			"owner":   owner,
			"with":    in.with,
			"id":      id,
			"channel": in.channel,
			"summary": in.summary,
			"date":    now.AddDate(0, 0, -in.daysAgo).UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		if _, err := result.Single(ctx); err != nil {
			return nil, fmt.Errorf("participants not found: %w", err)
		}
		if in.location == "" {
			return nil, nil
		}
		_, err = tx.Run(ctx, `
			MATCH (i:Interaction {id: $id}), (l:Location)
			WHERE toLower(l.city) = toLower($city)
			CREATE (i)-[:LOCATED_AT]->(l)
		`, map[string]interface{}{"id": id, "city": in.location})
		return nil, err
	})
	return err
}

func deleteAllData(ctx context.Context, driver neo4j.DriverWithContext) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return fmt.Errorf("failed to delete all data: %w", err)
	}
	return nil
}

// createSchema creates the id constraints and name indexes the repository queries rely on
func createSchema(ctx context.Context, driver neo4j.DriverWithContext) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT person_id_unique IF NOT EXISTS FOR (n:Person) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT company_id_unique IF NOT EXISTS FOR (n:Company) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT topic_id_unique IF NOT EXISTS FOR (n:Topic) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT event_id_unique IF NOT EXISTS FOR (n:Event) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT location_id_unique IF NOT EXISTS FOR (n:Location) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT interaction_id_unique IF NOT EXISTS FOR (n:Interaction) REQUIRE n.id IS UNIQUE",

		"CREATE INDEX person_name IF NOT EXISTS FOR (n:Person) ON (n.name)",
		"CREATE INDEX company_name IF NOT EXISTS FOR (n:Company) ON (n.name)",
		"CREATE INDEX topic_name IF NOT EXISTS FOR (n:Topic) ON (n.name)",
		"CREATE INDEX event_name IF NOT EXISTS FOR (n:Event) ON (n.name)",
		"CREATE INDEX location_city IF NOT EXISTS FOR (n:Location) ON (n.city)",
		"CREATE INDEX interaction_date IF NOT EXISTS FOR (n:Interaction) ON (n.date)",
	}

	var firstErr error
	for _, stmt := range statements {
		// keep going; older servers reject some statements
		if _, err := session.Run(ctx, stmt, nil); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
