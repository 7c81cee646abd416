package graph

import (
	"fmt"
	"strings"
	"unicode"

	"network-journal/backend/internal/constants"
)

// Node labels stored in the database, keyed by snapshot node type
var nodeLabels = map[string]string{
	"person":      "Person",
	"company":     "Company",
	"topic":       "Topic",
	"event":       "Event",
	"location":    "Location",
	"interaction": "Interaction",
}

// RelationshipTypes that may be written from a note analysis
var RelationshipTypes = []string{
	"KNOWS",
	"WORKS_AT",
	"INTERESTED_IN",
	"ATTENDED",
	"PARTICIPATED_IN",
	"LOCATED_AT",
	"LIVES_IN",
}

var channelNames = map[string]string{
	"in_person":  "Meeting",
	"call":       "Phone Call",
	"email":      "Email",
	"video_call": "Video Call",
	"text":       "Text Message",
}

// typeFromLabels maps database labels back to a snapshot node type
func typeFromLabels(labels []string) string {
	for _, l := range labels {
		t := strings.ToLower(l)
		if _, ok := nodeLabels[t]; ok {
			return t
		}
	}
	if len(labels) > 0 {
		return strings.ToLower(labels[0])
	}
	return "unknown"
}

// nameKey is the property a node type is identified by
func nameKey(nodeType string) string {
	if nodeType == "location" {
		return "city"
	}
	return "name"
}

// NodeLabel returns the display label for a node of the given type
func NodeLabel(nodeType, id string, props map[string]interface{}) string {
	switch nodeType {
	case "location":
		if city, ok := props["city"].(string); ok && city != "" {
			return city
		}
	case "interaction":
		return InteractionLabel(props)
	}
	if name, ok := props["name"].(string); ok && name != "" {
		return name
	}
	return id
}

// InteractionLabel is the summary (cut to 30 characters) or the channel
// name, followed by the date
func InteractionLabel(props map[string]interface{}) string {
	channel, _ := props["channel"].(string)
	summary, _ := props["summary"].(string)

	date, ok := timeFromValue(props["date"])
	if !ok {
		return fmt.Sprintf("%s - %v", channel, props["date"])
	}
	day := date.Format("2006-01-02")

	if summary != "" {
		runes := []rune(summary)
		if len(runes) > constants.InteractionSummaryLength {
			summary = string(runes[:constants.InteractionSummaryLength]) + "..."
		}
		return fmt.Sprintf("%s (%s)", summary, day)
	}
	return fmt.Sprintf("%s (%s)", channelName(channel), day)
}

func channelName(channel string) string {
	if name, ok := channelNames[channel]; ok {
		return name
	}
	return titleCase(channel)
}

// titleCase upper-cases every letter that follows a non-letter
func titleCase(s string) string {
	out := []rune(s)
	prevLetter := false
	for i, r := range out {
		if unicode.IsLetter(r) {
			if !prevLetter {
				out[i] = unicode.ToUpper(r)
			} else {
				out[i] = unicode.ToLower(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(out)
}

// linkID identifies a relationship by its endpoints and type
func linkID(source, relType, target string) string {
	return source + "-" + relType + "-" + target
}

// NormalizeRelationshipType upper-cases a free-form relationship name and
// reports whether it is one of RelationshipTypes
func NormalizeRelationshipType(t string) (string, bool) {
	t = strings.ToUpper(strings.TrimSpace(t))
	t = strings.NewReplacer(" ", "_", "-", "_").Replace(t)
	for _, known := range RelationshipTypes {
		if t == known {
			return t, true
		}
	}
	return t, false
}
