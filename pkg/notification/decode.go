package notification

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// wireRecord mirrors one element of the API's "notifications" array.
type wireRecord struct {
	Action        string          `json:"action"`
	ActorUUID     string          `json:"actor_uuid"`
	ResourceUUID  string          `json:"resource_uuid"`
	CreatedAt     string          `json:"created_at"`
	UserProfile   *wireProfile    `json:"user_profile"`
	ResourceMedia json.RawMessage `json:"resource_media"`
}

type wireProfile struct {
	Name string `json:"name"`
}

// timeLayouts are tried in order when parsing created_at.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Decode parses one raw notification element.
//
// It fails only when the element is not a JSON object with the expected
// field types. Missing fields are not checked here; Classify does that
// because which fields are required depends on the action.
func Decode(raw json.RawMessage) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return Record{}, &MalformedRecordError{Err: fmt.Errorf("%w: %v", ErrMalformedJSON, err)}
	}

	rec := Record{
		Action:     Action(strings.TrimSpace(w.Action)),
		ActorID:    strings.TrimSpace(w.ActorUUID),
		ResourceID: strings.TrimSpace(w.ResourceUUID),
		CreatedAt:  parseTime(w.CreatedAt),
		HasMedia:   truthy(w.ResourceMedia),
	}
	if w.UserProfile != nil {
		rec.ActorName = strings.TrimSpace(w.UserProfile.Name)
	}

	return rec, nil
}

// parseTime returns the zero time when s matches no known layout.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}

	return time.Time{}
}

// truthy reports whether a raw JSON value is present and non-empty:
// not null, false, 0, "", [] or {}.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	default:
		return true
	}
}
