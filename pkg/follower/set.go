// Package follower holds the set of accounts following the analyzed user.
//
// A Set is built once by Load (or NewSet in tests) and is read-only
// afterwards. Membership is matched by display name or by account id, since
// notification records identify actors by both.
package follower

import (
	"sort"
)

// Member is one follower account.
type Member struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// key identifies a member for deduplication.
func (m Member) key() string {
	if m.ID != "" {
		return "id:" + m.ID
	}
	return "name:" + m.Name
}

// Set is an immutable set of followers.
//
// A nil *Set is valid and contains nobody.
type Set struct {
	members []Member
	seen    map[string]struct{}
	names   map[string]struct{}
	ids     map[string]struct{}
}

// NewSet creates a set from members, dropping duplicates and members with
// neither a name nor an id.
func NewSet(members ...Member) *Set {
	s := &Set{
		seen:  make(map[string]struct{}),
		names: make(map[string]struct{}),
		ids:   make(map[string]struct{}),
	}
	for _, m := range members {
		s.add(m)
	}
	return s
}

// add inserts m and reports whether it was new.
func (s *Set) add(m Member) bool {
	if m.Name == "" && m.ID == "" {
		return false
	}
	k := m.key()
	if _, dup := s.seen[k]; dup {
		return false
	}
	s.seen[k] = struct{}{}
	s.members = append(s.members, m)
	if m.Name != "" {
		s.names[m.Name] = struct{}{}
	}
	if m.ID != "" {
		s.ids[m.ID] = struct{}{}
	}
	return true
}

// Contains reports whether an actor with the given name or id is a follower.
func (s *Set) Contains(name, id string) bool {
	if s == nil {
		return false
	}
	if name != "" {
		if _, ok := s.names[name]; ok {
			return true
		}
	}
	if id != "" {
		if _, ok := s.ids[id]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of followers.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Members returns a copy of the followers sorted by name, then id.
func (s *Set) Members() []Member {
	if s == nil {
		return nil
	}
	members := make([]Member, len(s.members))
	copy(members, s.members)
	sort.Slice(members, func(i, j int) bool {
		if members[i].Name != members[j].Name {
			return members[i].Name < members[j].Name
		}
		return members[i].ID < members[j].ID
	})
	return members
}
