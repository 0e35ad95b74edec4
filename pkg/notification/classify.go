package notification

// Classify turns a record into an aggregation event.
//
// Rules:
//   - unrecognized actions are ignored (no error)
//   - likes on resources without media are ignored
//   - likes and comments need an actor name and a resource id
//   - collects need a resource id
//
// A record missing a required field yields a *MalformedRecordError and a
// zero Event. Classify has no side effects.
func Classify(rec Record) (Event, error) {
	switch rec.Action {
	case ActionLiked:
		if !rec.HasMedia {
			return Event{Kind: KindIgnored, Reason: ReasonNoMedia}, nil
		}
		if err := requireFields(rec, fieldActorName, fieldResourceID); err != nil {
			return Event{}, err
		}
		return Event{
			Kind:     KindLike,
			Actor:    rec.ActorName,
			ActorID:  rec.ActorID,
			Resource: rec.ResourceID,
			At:       rec.CreatedAt,
		}, nil

	case ActionCommented:
		if err := requireFields(rec, fieldActorName, fieldResourceID); err != nil {
			return Event{}, err
		}
		return Event{
			Kind:     KindComment,
			Actor:    rec.ActorName,
			ActorID:  rec.ActorID,
			Resource: rec.ResourceID,
			At:       rec.CreatedAt,
		}, nil

	case ActionCollected:
		if err := requireFields(rec, fieldResourceID); err != nil {
			return Event{}, err
		}
		return Event{
			Kind:     KindCollect,
			Resource: rec.ResourceID,
			At:       rec.CreatedAt,
		}, nil

	default:
		return Event{Kind: KindIgnored, Reason: ReasonUnknownAction}, nil
	}
}

// Field names as they appear on the wire, used in error messages.
const (
	fieldActorName  = "user_profile.name"
	fieldResourceID = "resource_uuid"
)

// requireFields checks that every named field is non-empty.
func requireFields(rec Record, fields ...string) error {
	for _, field := range fields {
		var value string
		switch field {
		case fieldActorName:
			value = rec.ActorName
		case fieldResourceID:
			value = rec.ResourceID
		}

		if value == "" {
			return &MalformedRecordError{
				Action: rec.Action,
				Field:  field,
				Err:    ErrMissingField,
			}
		}
	}

	return nil
}
