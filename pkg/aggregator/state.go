package aggregator

import (
	"sort"
	"time"

	"github.com/0xmhha/likestats/pkg/notification"
)

// State is the aggregate of one run.
//
// Once returned by Freeze a State is read-only: every accessor returns a
// copy, so callers cannot change what other readers see.
type State struct {
	likesByUser        map[string]map[string]struct{} // actor -> set of resources
	commentsByUser     map[string]int
	commentsByResource map[string]int
	collectsByResource map[string]int

	likes    []Like            // first occurrence of each (actor, resource)
	actorIDs map[string]string // actor name -> actor id
	counters Counters

	firstSeen time.Time
	lastSeen  time.Time
}

func newState() *State {
	return &State{
		likesByUser:        make(map[string]map[string]struct{}),
		commentsByUser:     make(map[string]int),
		commentsByResource: make(map[string]int),
		collectsByResource: make(map[string]int),
		likes:              make([]Like, 0),
		actorIDs:           make(map[string]string),
		counters: Counters{
			IgnoredByReason: make(map[string]int),
		},
	}
}

// rememberActor records the first non-empty id seen for an actor name.
func (s *State) rememberActor(name, id string) {
	if id == "" {
		return
	}
	if _, exists := s.actorIDs[name]; !exists {
		s.actorIDs[name] = id
	}
}

// observe widens the activity window to include ev.
func (s *State) observe(ev notification.Event) {
	if ev.At.IsZero() {
		return
	}
	if s.firstSeen.IsZero() || ev.At.Before(s.firstSeen) {
		s.firstSeen = ev.At
	}
	if s.lastSeen.IsZero() || ev.At.After(s.lastSeen) {
		s.lastSeen = ev.At
	}
}

// LikeCounts returns the number of distinct resources each user liked.
func (s *State) LikeCounts() map[string]int {
	counts := make(map[string]int, len(s.likesByUser))
	for user, resources := range s.likesByUser {
		counts[user] = len(resources)
	}
	return counts
}

// LikedResources returns the sorted resources a user liked.
func (s *State) LikedResources(user string) []string {
	resources := make([]string, 0, len(s.likesByUser[user]))
	for r := range s.likesByUser[user] {
		resources = append(resources, r)
	}
	sort.Strings(resources)
	return resources
}

// HasLiked reports whether user liked resource.
func (s *State) HasLiked(user, resource string) bool {
	_, ok := s.likesByUser[user][resource]
	return ok
}

// TotalLikes returns the number of distinct (actor, resource) likes.
func (s *State) TotalLikes() int {
	total := 0
	for _, resources := range s.likesByUser {
		total += len(resources)
	}
	return total
}

// CommentCountsByUser returns comment counts per actor.
func (s *State) CommentCountsByUser() map[string]int {
	return copyCounts(s.commentsByUser)
}

// CommentCountsByResource returns comment counts per resource.
func (s *State) CommentCountsByResource() map[string]int {
	return copyCounts(s.commentsByResource)
}

// CollectCountsByResource returns collect counts per resource.
func (s *State) CollectCountsByResource() map[string]int {
	return copyCounts(s.collectsByResource)
}

// Likes returns every distinct like, newest first.
//
// Ties (and likes without a timestamp, which sort last) are ordered by
// actor, then resource.
func (s *State) Likes() []Like {
	likes := make([]Like, len(s.likes))
	copy(likes, s.likes)

	sort.SliceStable(likes, func(i, j int) bool {
		a, b := likes[i], likes[j]
		if !a.At.Equal(b.At) {
			return a.At.After(b.At)
		}
		if a.Actor != b.Actor {
			return a.Actor < b.Actor
		}
		return a.Resource < b.Resource
	})

	return likes
}

// ActorID returns the id recorded for an actor name, or "".
func (s *State) ActorID(name string) string {
	return s.actorIDs[name]
}

// Counters returns the event counters.
func (s *State) Counters() Counters {
	c := s.counters
	c.IgnoredByReason = copyCounts(s.counters.IgnoredByReason)
	return c
}

// FirstSeen returns the earliest event timestamp, zero if none.
func (s *State) FirstSeen() time.Time {
	return s.firstSeen
}

// LastSeen returns the latest event timestamp, zero if none.
func (s *State) LastSeen() time.Time {
	return s.lastSeen
}

// Empty reports whether nothing was aggregated.
func (s *State) Empty() bool {
	return len(s.likesByUser) == 0 &&
		len(s.commentsByUser) == 0 &&
		len(s.collectsByResource) == 0
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
