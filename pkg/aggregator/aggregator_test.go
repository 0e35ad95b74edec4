package aggregator

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/0xmhha/likestats/pkg/notification"
)

func like(actor, resource string) notification.Event {
	return notification.Event{Kind: notification.KindLike, Actor: actor, Resource: resource}
}

func comment(actor, resource string) notification.Event {
	return notification.Event{Kind: notification.KindComment, Actor: actor, Resource: resource}
}

func collect(resource string) notification.Event {
	return notification.Event{Kind: notification.KindCollect, Resource: resource}
}

func mustIngest(t *testing.T, agg Aggregator, events ...notification.Event) {
	t.Helper()
	for _, ev := range events {
		if err := agg.Ingest(ev); err != nil {
			t.Fatalf("Ingest(%+v) error = %v", ev, err)
		}
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	agg := New()
	if agg == nil {
		t.Fatal("New() returned nil")
	}

	state := agg.Freeze()
	if !state.Empty() {
		t.Error("fresh aggregator state is not empty")
	}
	if state.TotalLikes() != 0 {
		t.Errorf("TotalLikes() = %d, want 0", state.TotalLikes())
	}
}

func TestIngest_LikeDedup(t *testing.T) {
	t.Parallel()

	for _, n := range []int{2, 3, 10} {
		t.Run(fmt.Sprintf("%d duplicates", n), func(t *testing.T) {
			t.Parallel()

			agg := New()
			for i := 0; i < n; i++ {
				mustIngest(t, agg, like("alice", "post-1"))
			}

			state := agg.Freeze()
			if got := state.LikedResources("alice"); len(got) != 1 || got[0] != "post-1" {
				t.Errorf("LikedResources(alice) = %v, want [post-1]", got)
			}
			if state.TotalLikes() != 1 {
				t.Errorf("TotalLikes() = %d, want 1", state.TotalLikes())
			}
			if c := state.Counters(); c.Likes != n || c.DuplicateLikes != n-1 {
				t.Errorf("Counters() = %+v, want Likes=%d DuplicateLikes=%d", c, n, n-1)
			}
			if len(state.Likes()) != 1 {
				t.Errorf("Likes() has %d entries, want 1", len(state.Likes()))
			}
		})
	}
}

func TestIngest_LikesAcrossUsersAndResources(t *testing.T) {
	t.Parallel()

	agg := New()
	mustIngest(t, agg,
		like("alice", "post-1"),
		like("alice", "post-2"),
		like("bob", "post-1"),
		like("alice", "post-1"),
	)

	state := agg.Freeze()
	counts := state.LikeCounts()
	if counts["alice"] != 2 || counts["bob"] != 1 {
		t.Errorf("LikeCounts() = %v, want alice=2 bob=1", counts)
	}
	if state.TotalLikes() != 3 {
		t.Errorf("TotalLikes() = %d, want 3", state.TotalLikes())
	}
	if !state.HasLiked("bob", "post-1") || state.HasLiked("bob", "post-2") {
		t.Error("HasLiked() does not reflect ingested likes")
	}
}

func TestIngest_CommentAdditivity(t *testing.T) {
	t.Parallel()

	agg := New()
	mustIngest(t, agg,
		comment("alice", "post-1"),
		comment("alice", "post-1"),
		comment("alice", "post-2"),
		comment("bob", "post-1"),
	)

	state := agg.Freeze()
	byUser := state.CommentCountsByUser()
	if byUser["alice"] != 3 || byUser["bob"] != 1 {
		t.Errorf("CommentCountsByUser() = %v, want alice=3 bob=1", byUser)
	}

	byResource := state.CommentCountsByResource()
	if byResource["post-1"] != 3 || byResource["post-2"] != 1 {
		t.Errorf("CommentCountsByResource() = %v, want post-1=3 post-2=1", byResource)
	}
}

func TestIngest_Collect(t *testing.T) {
	t.Parallel()

	agg := New()
	mustIngest(t, agg, collect("post-1"), collect("post-1"), collect("post-2"))

	got := agg.Freeze().CollectCountsByResource()
	if got["post-1"] != 2 || got["post-2"] != 1 {
		t.Errorf("CollectCountsByResource() = %v, want post-1=2 post-2=1", got)
	}
}

func TestIngest_IgnoredChangesNothing(t *testing.T) {
	t.Parallel()

	agg := New()
	mustIngest(t, agg,
		notification.Event{Kind: notification.KindIgnored, Reason: notification.ReasonNoMedia},
		notification.Event{Kind: notification.KindIgnored, Reason: notification.ReasonUnknownAction},
		notification.Event{Kind: notification.KindIgnored, Reason: notification.ReasonUnknownAction},
	)

	state := agg.Freeze()
	if !state.Empty() {
		t.Error("ignored events changed the aggregate")
	}
	if len(state.LikeCounts()) != 0 || len(state.CommentCountsByUser()) != 0 ||
		len(state.CommentCountsByResource()) != 0 || len(state.CollectCountsByResource()) != 0 {
		t.Error("ignored events produced aggregate entries")
	}

	c := state.Counters()
	if c.Ignored != 3 {
		t.Errorf("Counters().Ignored = %d, want 3", c.Ignored)
	}
	if c.IgnoredByReason[notification.ReasonUnknownAction] != 2 {
		t.Errorf("IgnoredByReason[unknown_action] = %d, want 2", c.IgnoredByReason[notification.ReasonUnknownAction])
	}
}

func TestIngest_InvalidEvent(t *testing.T) {
	t.Parallel()

	tests := []notification.Event{
		like("", "post-1"),
		like("alice", ""),
		comment("", "post-1"),
		comment("alice", ""),
		collect(""),
	}

	for _, ev := range tests {
		agg := New()
		err := agg.Ingest(ev)
		if !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("Ingest(%+v) error = %v, want ErrInvalidEvent", ev, err)
		}
		if !agg.Freeze().Empty() {
			t.Errorf("Ingest(%+v) changed the state despite error", ev)
		}
	}
}

func TestFreeze_TransfersOwnership(t *testing.T) {
	t.Parallel()

	agg := New()
	mustIngest(t, agg, like("alice", "post-1"), comment("alice", "post-1"))

	frozen := agg.Freeze()

	// Writes after Freeze must not reach the frozen state.
	mustIngest(t, agg, like("alice", "post-2"), comment("bob", "post-9"))

	if frozen.TotalLikes() != 1 {
		t.Errorf("frozen TotalLikes() = %d, want 1", frozen.TotalLikes())
	}
	if _, ok := frozen.CommentCountsByUser()["bob"]; ok {
		t.Error("frozen state saw a comment ingested after Freeze")
	}

	second := agg.Freeze()
	if second.TotalLikes() != 1 || second.CommentCountsByUser()["bob"] != 1 {
		t.Error("second Freeze() did not return the post-freeze events")
	}
}

func TestState_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	agg := New()
	mustIngest(t, agg, like("alice", "post-1"), comment("alice", "post-1"), collect("post-1"))
	state := agg.Freeze()

	state.LikeCounts()["alice"] = 99
	state.CommentCountsByUser()["alice"] = 99
	state.CommentCountsByResource()["post-1"] = 99
	state.CollectCountsByResource()["post-1"] = 99
	state.Likes()[0].Actor = "mallory"
	state.Counters().IgnoredByReason["x"] = 1

	if state.LikeCounts()["alice"] != 1 ||
		state.CommentCountsByUser()["alice"] != 1 ||
		state.CommentCountsByResource()["post-1"] != 1 ||
		state.CollectCountsByResource()["post-1"] != 1 ||
		state.Likes()[0].Actor != "alice" ||
		len(state.Counters().IgnoredByReason) != 0 {
		t.Error("mutating accessor results changed the state")
	}
}

func TestState_LikesNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	agg := New()
	mustIngest(t, agg,
		notification.Event{Kind: notification.KindLike, Actor: "alice", Resource: "p-1", At: base},
		notification.Event{Kind: notification.KindLike, Actor: "bob", Resource: "p-1", At: base.Add(2 * time.Hour)},
		notification.Event{Kind: notification.KindLike, Actor: "carol", Resource: "p-1"},
		notification.Event{Kind: notification.KindLike, Actor: "alice", Resource: "p-2", At: base.Add(time.Hour)},
		// A later duplicate keeps the first occurrence.
		notification.Event{Kind: notification.KindLike, Actor: "alice", Resource: "p-1", At: base.Add(5 * time.Hour)},
	)

	state := agg.Freeze()
	likes := state.Likes()

	want := []string{"bob/p-1", "alice/p-2", "alice/p-1", "carol/p-1"}
	if len(likes) != len(want) {
		t.Fatalf("Likes() has %d entries, want %d", len(likes), len(want))
	}
	for i, l := range likes {
		if got := l.Actor + "/" + l.Resource; got != want[i] {
			t.Errorf("Likes()[%d] = %s, want %s", i, got, want[i])
		}
	}

	if !state.FirstSeen().Equal(base) {
		t.Errorf("FirstSeen() = %v, want %v", state.FirstSeen(), base)
	}
	if !state.LastSeen().Equal(base.Add(5 * time.Hour)) {
		t.Errorf("LastSeen() = %v, want %v", state.LastSeen(), base.Add(5*time.Hour))
	}
}

func TestState_ActorID(t *testing.T) {
	t.Parallel()

	agg := New()
	mustIngest(t, agg,
		notification.Event{Kind: notification.KindComment, Actor: "alice", Resource: "p-1"},
		notification.Event{Kind: notification.KindLike, Actor: "alice", ActorID: "u-1", Resource: "p-1"},
		notification.Event{Kind: notification.KindLike, Actor: "alice", ActorID: "u-other", Resource: "p-2"},
	)

	state := agg.Freeze()
	if got := state.ActorID("alice"); got != "u-1" {
		t.Errorf("ActorID(alice) = %q, want u-1", got)
	}
	if got := state.ActorID("nobody"); got != "" {
		t.Errorf("ActorID(nobody) = %q, want empty", got)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	agg := New()
	mustIngest(t, agg, like("alice", "post-1"))
	agg.Reset()

	if !agg.Freeze().Empty() {
		t.Error("Reset() did not clear the state")
	}
}

func BenchmarkIngest(b *testing.B) {
	agg := New()
	events := []notification.Event{
		like("alice", "post-1"),
		comment("bob", "post-2"),
		collect("post-3"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = agg.Ingest(events[i%len(events)])
	}
}
