// Package aggregator folds classified notification events into the
// aggregate state of one run.
//
// Likes are kept as a set of resources per user, so the same (actor,
// resource) pair counts once no matter how many times the feed repeats it.
// Comments and collects are plain per-occurrence counters.
//
// The Aggregator is the single writer of its state. Freeze hands the state
// over as a read-only *State and leaves the aggregator empty, so the frozen
// value is never aliased by a writer.
//
// Example usage:
//
//	agg := aggregator.New()
//	for _, ev := range events {
//	    if err := agg.Ingest(ev); err != nil {
//	        log.Warn("event rejected", "error", err)
//	    }
//	}
//	state := agg.Freeze()
//	fmt.Printf("Total likes: %d\n", state.TotalLikes())
package aggregator

import (
	"time"

	"github.com/0xmhha/likestats/pkg/notification"
)

// Aggregator accumulates notification events for one run.
//
// An Aggregator is not safe for concurrent use; it must have exactly one
// writer.
type Aggregator interface {
	// Ingest folds one event into the state.
	//
	// Ignored events only move the ignored counter. Returns ErrInvalidEvent
	// when an event lacks a key its kind needs; the state is left unchanged.
	Ingest(ev notification.Event) error

	// Freeze returns the accumulated state and resets the aggregator.
	//
	// The returned State is never touched by the aggregator again.
	Freeze() *State

	// Reset discards all accumulated data.
	Reset()
}

// Like is the first occurrence of one (actor, resource) like.
type Like struct {
	Actor    string    `json:"actor"`
	ActorID  string    `json:"actor_id,omitempty"`
	Resource string    `json:"resource"`
	At       time.Time `json:"created_at"`
}

// Counters tracks how many events of each kind were ingested.
type Counters struct {
	// Likes is the number of like events, duplicates included.
	Likes int `json:"likes"`

	// DuplicateLikes is the number of like events for an already-seen pair.
	DuplicateLikes int `json:"duplicate_likes"`

	// Comments is the number of comment events.
	Comments int `json:"comments"`

	// Collects is the number of collect events.
	Collects int `json:"collects"`

	// Ignored is the number of ignored events.
	Ignored int `json:"ignored"`

	// IgnoredByReason splits Ignored by notification.Reason* value.
	IgnoredByReason map[string]int `json:"ignored_by_reason,omitempty"`
}
