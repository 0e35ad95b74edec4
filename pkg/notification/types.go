// Package notification decodes notification records returned by the
// platform's notification API and classifies them into aggregation events.
//
// Records are decoded one at a time from raw JSON so that a single malformed
// element never spoils the rest of its page. Classification is a pure
// function: unknown actions and likes on resources without media become
// ignored events, and records missing a field their action needs are
// reported as *MalformedRecordError.
//
// Example usage:
//
//	rec, err := notification.Decode(raw)
//	if err != nil {
//	    return err
//	}
//	ev, err := notification.Classify(rec)
//	if err != nil {
//	    log.Warn("skipping record", "error", err)
//	}
package notification

import (
	"time"
)

// Action is the kind of activity a notification reports.
type Action string

// Recognized actions. Anything else is ignored.
const (
	ActionLiked     Action = "liked"
	ActionCommented Action = "commented"
	ActionCollected Action = "collected"
)

// Record is one decoded notification.
//
// Invariant: a Record is never mutated after Decode returns it.
type Record struct {
	// Action is the raw action string.
	Action Action

	// ActorName is the acting user's display name (user_profile.name).
	ActorName string

	// ActorID identifies the acting user (actor_uuid).
	ActorID string

	// ResourceID identifies the target post (resource_uuid).
	ResourceID string

	// CreatedAt is zero when the API sent no parsable timestamp.
	CreatedAt time.Time

	// HasMedia reports whether resource_media was present and non-empty.
	HasMedia bool
}

// Kind tags the variant held by an Event.
type Kind int

// Event kinds.
const (
	KindIgnored Kind = iota
	KindLike
	KindComment
	KindCollect
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLike:
		return "like"
	case KindComment:
		return "comment"
	case KindCollect:
		return "collect"
	default:
		return "ignored"
	}
}

// Reasons a record is ignored.
const (
	ReasonUnknownAction = "unknown_action"
	ReasonNoMedia       = "no_media"
)

// Event is a classified notification.
//
// Which fields are meaningful depends on Kind:
//   - KindLike: Actor, ActorID, Resource, At
//   - KindComment: Actor, ActorID, Resource, At
//   - KindCollect: Resource, At
//   - KindIgnored: Reason
type Event struct {
	Kind     Kind
	Actor    string
	ActorID  string
	Resource string
	At       time.Time
	Reason   string
}

// Ignored reports whether the event carries no aggregate change.
func (e Event) Ignored() bool {
	return e.Kind == KindIgnored
}
