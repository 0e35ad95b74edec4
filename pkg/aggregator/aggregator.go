package aggregator

import (
	"fmt"

	"github.com/0xmhha/likestats/pkg/notification"
)

// aggregator implements the Aggregator interface.
type aggregator struct {
	state *State
}

// New creates an empty aggregator.
func New() Aggregator {
	return &aggregator{
		state: newState(),
	}
}

// Ingest implements Aggregator.Ingest.
func (a *aggregator) Ingest(ev notification.Event) error {
	s := a.state

	switch ev.Kind {
	case notification.KindLike:
		if ev.Actor == "" || ev.Resource == "" {
			return fmt.Errorf("%w: like actor=%q resource=%q", ErrInvalidEvent, ev.Actor, ev.Resource)
		}
		s.counters.Likes++

		resources, exists := s.likesByUser[ev.Actor]
		if !exists {
			resources = make(map[string]struct{})
			s.likesByUser[ev.Actor] = resources
		}
		if _, seen := resources[ev.Resource]; seen {
			s.counters.DuplicateLikes++
		} else {
			resources[ev.Resource] = struct{}{}
			s.likes = append(s.likes, Like{
				Actor:    ev.Actor,
				ActorID:  ev.ActorID,
				Resource: ev.Resource,
				At:       ev.At,
			})
		}
		s.rememberActor(ev.Actor, ev.ActorID)

	case notification.KindComment:
		if ev.Actor == "" || ev.Resource == "" {
			return fmt.Errorf("%w: comment actor=%q resource=%q", ErrInvalidEvent, ev.Actor, ev.Resource)
		}
		s.counters.Comments++
		s.commentsByUser[ev.Actor]++
		s.commentsByResource[ev.Resource]++
		s.rememberActor(ev.Actor, ev.ActorID)

	case notification.KindCollect:
		if ev.Resource == "" {
			return fmt.Errorf("%w: collect resource is empty", ErrInvalidEvent)
		}
		s.counters.Collects++
		s.collectsByResource[ev.Resource]++

	default:
		s.counters.Ignored++
		if ev.Reason != "" {
			s.counters.IgnoredByReason[ev.Reason]++
		}
		return nil
	}

	s.observe(ev)
	return nil
}

// Freeze implements Aggregator.Freeze.
func (a *aggregator) Freeze() *State {
	frozen := a.state
	a.state = newState()
	return frozen
}

// Reset implements Aggregator.Reset.
func (a *aggregator) Reset() {
	a.state = newState()
}
