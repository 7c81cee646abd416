package state

import "strings"

// EntityMention is an entity recognised in a free-form note
type EntityMention struct {
	Name       string                 `json:"name"`
	EntityType string                 `json:"entity_type"` // person, company, topic, event, location
	Confidence float64                `json:"confidence"`
	Context    string                 `json:"context"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// RelationshipMention is a relationship recognised in a free-form note
type RelationshipMention struct {
	FromEntity       string                 `json:"from_entity"`
	ToEntity         string                 `json:"to_entity"`
	RelationshipType string                 `json:"relationship_type"`
	Strength         int                    `json:"strength,omitempty"` // 1-5
	Context          string                 `json:"context"`
	Properties       map[string]interface{} `json:"properties,omitempty"`
}

// NoteAnalysis is the structured result of reading one note
type NoteAnalysis struct {
	Entities          []EntityMention       `json:"entities"`
	Relationships     []RelationshipMention `json:"relationships"`
	OwnerContext      string                `json:"main_person_context,omitempty"`
	AmbiguousEntities []string              `json:"ambiguous_entities,omitempty"`
	SuggestedActions  []string              `json:"suggested_actions,omitempty"`
	ConfidenceScore   float64               `json:"confidence_score"`
	ProcessingNotes   []string              `json:"processing_notes,omitempty"`
}

// EntityTypes lists the entity categories a note can mention
var EntityTypes = []string{"person", "company", "topic", "event", "location"}

// NormalizeEntityType maps free-form type names onto EntityTypes.
// Unknown types map to the empty string.
func NormalizeEntityType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case "person", "people", "contact":
		return "person"
	case "company", "organization", "organisation", "employer":
		return "company"
	case "topic", "interest", "subject":
		return "topic"
	case "event", "meeting", "conference":
		return "event"
	case "location", "place", "city":
		return "location"
	}
	return ""
}

// Entity returns the mention with the given name, compared case-insensitively
func (a *NoteAnalysis) Entity(name string) (EntityMention, bool) {
	for _, e := range a.Entities {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return EntityMention{}, false
}
