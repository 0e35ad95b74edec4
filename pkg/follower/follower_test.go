package follower

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/likestats/pkg/logger"
)

type fakeLister struct {
	all     []Member
	err     error
	offsets []int
}

func (f *fakeLister) FetchFollowersPage(_ context.Context, userID string, offset, limit int) ([]Member, error) {
	f.offsets = append(f.offsets, offset)
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.all) {
		end = len(f.all)
	}
	return f.all[offset:end], nil
}

func members(n int) []Member {
	out := make([]Member, n)
	for i := range out {
		out[i] = Member{ID: fmt.Sprintf("id-%d", i), Name: fmt.Sprintf("user-%d", i)}
	}
	return out
}

func TestSet_Contains(t *testing.T) {
	t.Parallel()

	set := NewSet(
		Member{ID: "u-1", Name: "alice"},
		Member{Name: "bob"},
		Member{ID: "u-3"},
	)

	tests := []struct {
		name, actor, id string
		want            bool
	}{
		{"name match", "alice", "", true},
		{"id match", "", "u-1", true},
		{"name match wrong id", "alice", "u-9", true},
		{"id match wrong name", "renamed", "u-1", true},
		{"name only member", "bob", "x", true},
		{"id only member", "carol", "u-3", true},
		{"stranger", "mallory", "u-9", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, set.Contains(tt.actor, tt.id))
		})
	}
}

func TestSet_Nil(t *testing.T) {
	t.Parallel()

	var set *Set
	assert.False(t, set.Contains("alice", "u-1"))
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.Members())
}

func TestNewSet_Dedup(t *testing.T) {
	t.Parallel()

	set := NewSet(
		Member{ID: "u-1", Name: "alice"},
		Member{ID: "u-1", Name: "alice"},
		Member{Name: "bob"},
		Member{Name: "bob"},
		Member{},
	)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []Member{{ID: "u-1", Name: "alice"}, {Name: "bob"}}, set.Members())
}

func TestLoad_Pagination(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{all: members(250)}

	set, err := Load(context.Background(), lister, "me", Config{PageSize: 100}, logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 100, 200}, lister.offsets)
	assert.Equal(t, 250, set.Len())
	assert.True(t, set.Contains("user-249", ""))
}

func TestLoad_MaxPages(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{all: members(1000)}

	set, err := Load(context.Background(), lister, "me", Config{PageSize: 100, MaxPages: 2}, logger.Noop())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 100}, lister.offsets)
	assert.Equal(t, 200, set.Len())
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), &fakeLister{}, "", Config{PageSize: 100}, nil)
	assert.ErrorIs(t, err, ErrEmptyUserID)

	_, err = Load(context.Background(), &fakeLister{}, "me", Config{}, nil)
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	fetchErr := errors.New("boom")
	_, err = Load(context.Background(), &fakeLister{err: fetchErr}, "me", Config{PageSize: 10}, nil)
	assert.ErrorIs(t, err, fetchErr)
	assert.Contains(t, err.Error(), "offset 0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Load(ctx, &fakeLister{all: members(5)}, "me", Config{PageSize: 10}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
