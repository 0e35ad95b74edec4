package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/likestats/pkg/logger"
	"github.com/0xmhha/likestats/pkg/stats"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	s, err := New(Config{DBPath: filepath.Join(t.TempDir(), "nested", "history.db")}, logger.Noop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRun(name string) *Run {
	return &Run{
		Name:     name,
		UserID:   "me-123",
		Source:   "https://api.example.invalid",
		Duration: 1500 * time.Millisecond,
		Pages:    3,
		Records:  1137,
		Warnings: 2,
		Snapshot: &stats.Snapshot{
			Totals:          stats.Totals{Likes: 42, Comments: 7},
			LikesByUser:     []stats.Rank{{Key: "alice", Count: 30}, {Key: "bob", Count: 12}},
			AvgLikesPerUser: stats.Of(21),
		},
	}
}

func TestNew_NoPath(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, nil)
	assert.ErrorIs(t, err, ErrNoDBPath)
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	run := testRun("")
	require.NoError(t, s.Save(run))
	assert.True(t, isValidID(run.ID), "Save() assigned %q", run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	got, err := s.Get(run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "me-123", got.UserID)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Equal(t, 42, got.Snapshot.Totals.Likes)
	assert.Equal(t, run.Snapshot.LikesByUser, got.Snapshot.LikesByUser)
	assert.Equal(t, stats.Of(21), got.Snapshot.AvgLikesPerUser)
	assert.False(t, got.Snapshot.Followers.Available)
}

func TestSave_Invalid(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	assert.ErrorIs(t, s.Save(nil), ErrInvalidRun)
	assert.ErrorIs(t, s.Save(&Run{}), ErrInvalidRun)

	require.NoError(t, s.Save(testRun("weekly")))
	assert.ErrorIs(t, s.Save(testRun("weekly")), ErrNameConflict)
}

func TestSave_ConflictLeavesRunUnchanged(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.Save(testRun("weekly")))

	run := testRun(" weekly ")
	assert.ErrorIs(t, s.Save(run), ErrNameConflict)

	assert.Empty(t, run.ID)
	assert.True(t, run.CreatedAt.IsZero())
	assert.Equal(t, " weekly ", run.Name)

	runs, err := s.List()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestGet_Errors(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.Get("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = s.Get("a1b2c3d4-e5f6-7890-abcd-ef1234567890")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.GetByName("")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = s.GetByName("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	run := testRun("baseline")
	require.NoError(t, s.Save(run))

	byID, err := s.Resolve(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, byID.ID)

	byName, err := s.Resolve("baseline")
	require.NoError(t, err)
	assert.Equal(t, run.ID, byName.ID)

	_, err = s.Resolve("nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestList_NewestFirst(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	runs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first := testRun("first")
	require.NoError(t, s.Save(first))
	time.Sleep(5 * time.Millisecond)
	second := testRun("second")
	require.NoError(t, s.Save(second))

	runs, err = s.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestSetName(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	a := testRun("")
	b := testRun("taken")
	require.NoError(t, s.Save(a))
	require.NoError(t, s.Save(b))

	require.NoError(t, s.SetName(a.ID, "old"))
	require.NoError(t, s.SetName(a.ID, "new"))
	require.NoError(t, s.SetName(a.ID, "new"))

	got, err := s.GetByName("new")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.GetByName("old")
	assert.ErrorIs(t, err, ErrRunNotFound, "old name must leave the index")

	assert.ErrorIs(t, s.SetName(a.ID, "taken"), ErrNameConflict)
	assert.ErrorIs(t, s.SetName(a.ID, "  "), ErrEmptyName)
	assert.ErrorIs(t, s.SetName("bad", "x"), ErrInvalidID)
	assert.ErrorIs(t, s.SetName("a1b2c3d4-e5f6-7890-abcd-ef1234567890", "x"), ErrRunNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	run := testRun("doomed")
	require.NoError(t, s.Save(run))
	require.NoError(t, s.Delete(run.ID))

	_, err := s.Get(run.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)

	// Name is free again.
	require.NoError(t, s.Save(testRun("doomed")))

	// Deleting twice is fine.
	require.NoError(t, s.Delete(run.ID))
	assert.ErrorIs(t, s.Delete("bad"), ErrInvalidID)
}

func TestPersistence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")

	s, err := New(Config{DBPath: path}, logger.Noop())
	require.NoError(t, err)
	run := testRun("kept")
	require.NoError(t, s.Save(run))
	require.NoError(t, s.Close())

	reopened, err := New(Config{DBPath: path}, logger.Noop())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetByName("kept")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/abs/path.db", expandHome("/abs/path.db"))
	assert.Equal(t, "/home/tester", expandHome("~"))
	assert.Equal(t, filepath.Join("/home/tester", ".config", "x.db"), expandHome("~/.config/x.db"))
}
