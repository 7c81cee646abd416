package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getIntFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}

func getStringSliceFromRecord(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []string{}
	}
	if slice, ok := val.([]interface{}); ok {
		result := make([]string, 0, len(slice))
		for _, v := range slice {
			if str, ok := v.(string); ok {
				result = append(result, str)
			}
		}
		return result
	}
	return []string{}
}

func getMapFromRecord(record *neo4j.Record, key string) map[string]interface{} {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return map[string]interface{}{}
	}
	if m, ok := val.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// nativeProps converts driver temporal values so properties encode cleanly as JSON
func nativeProps(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = nativeValue(v)
	}
	return out
}

func nativeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case dbtype.Date:
		return t.Time().Format("2006-01-02")
	case dbtype.LocalDateTime:
		return t.Time().Format("2006-01-02T15:04:05")
	case dbtype.LocalTime:
		return t.Time().Format("15:04:05")
	case dbtype.Time:
		return t.Time().Format("15:04:05Z07:00")
	case dbtype.Duration:
		return t.String()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = nativeValue(e)
		}
		return out
	case map[string]interface{}:
		return nativeProps(t)
	}
	return v
}

// timeFromValue reads a date-like property in any of the forms the
// database or older imports store it in
func timeFromValue(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case dbtype.Date:
		return t.Time(), true
	case dbtype.LocalDateTime:
		return t.Time(), true
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// scalarProps keeps only values the database accepts as property values
func scalarProps(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		switch t := v.(type) {
		case string, bool, int, int64, float64:
			out[k] = t
		case []string:
			out[k] = t
		}
	}
	return out
}
