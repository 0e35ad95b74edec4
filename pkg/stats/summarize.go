package stats

import (
	"github.com/0xmhha/likestats/pkg/aggregator"
	"github.com/0xmhha/likestats/pkg/follower"
)

// Summarize derives a Snapshot from a frozen aggregate.
//
// Parameters:
//   - state: Frozen aggregate (nil is treated as empty)
//   - followers: Follower set, or nil when follower analysis is skipped
//   - cfg: Percentile and share selection
//
// Returns:
//   - Snapshot of the run
//   - Error only when cfg is invalid
func Summarize(state *aggregator.State, followers *follower.Set, cfg Config) (*Snapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if state == nil {
		state = aggregator.New().Freeze()
	}

	likeCounts := state.LikeCounts()
	commentsByUser := state.CommentCountsByUser()
	commentsByResource := state.CommentCountsByResource()
	collectsByResource := state.CollectCountsByResource()
	counters := state.Counters()

	snap := &Snapshot{
		Totals: Totals{
			Likes:              sum(likeCounts),
			Comments:           sum(commentsByUser),
			Collects:           sum(collectsByResource),
			UsersWhoLiked:      len(likeCounts),
			UsersWhoCommented:  len(commentsByUser),
			ResourcesCommented: len(commentsByResource),
			ResourcesCollected: len(collectsByResource),
			DuplicateLikes:     counters.DuplicateLikes,
			Ignored:            counters.Ignored,
		},
		LikesByUser:        Ranking(likeCounts),
		CommentsByUser:     Ranking(commentsByUser),
		CommentsByResource: Ranking(commentsByResource),
		CollectsByResource: Ranking(collectsByResource),
		LikePercentiles:    Percentiles(values(likeCounts), cfg.Percentiles),
		CommentPercentiles: Percentiles(values(commentsByUser), cfg.Percentiles),
		FirstActivity:      state.FirstSeen(),
		LastActivity:       state.LastSeen(),
	}

	if avg, err := Mean(snap.Totals.Likes, snap.Totals.UsersWhoLiked); err == nil {
		snap.AvgLikesPerUser = Of(avg)
	}

	snap.TopShares = TopShares(snap.LikesByUser, cfg.TopFractions)

	if len(snap.CommentsByResource) > 0 {
		top := snap.CommentsByResource[0]
		snap.MostCommented = &top
	}
	if len(snap.CollectsByResource) > 0 {
		top := snap.CollectsByResource[0]
		snap.MostCollected = &top
	}

	snap.Followers = splitFollowers(state, likeCounts, commentsByUser, followers, cfg.FollowerPercentiles)

	return snap, nil
}

// splitFollowers partitions likes and comments by follower status.
//
// With no followers every like and comment counts as non-follower.
func splitFollowers(
	state *aggregator.State,
	likeCounts, commentsByUser map[string]int,
	followers *follower.Set,
	ps []float64,
) FollowerSplit {
	split := FollowerSplit{
		Available: followers != nil,
		Followers: followers.Len(),
	}

	likedNames := make(map[string]struct{}, len(likeCounts))
	likedIDs := make(map[string]struct{}, len(likeCounts))
	var followerLikeCounts []int

	for user, n := range likeCounts {
		id := state.ActorID(user)
		likedNames[user] = struct{}{}
		if id != "" {
			likedIDs[id] = struct{}{}
		}

		if followers.Contains(user, id) {
			split.FollowerLikes += n
			followerLikeCounts = append(followerLikeCounts, n)
		} else {
			split.NonFollowerLikes += n
		}
	}

	for user, n := range commentsByUser {
		if followers.Contains(user, state.ActorID(user)) {
			split.FollowerComments += n
		} else {
			split.NonFollowerComments += n
		}
	}

	for _, m := range followers.Members() {
		_, byName := likedNames[m.Name]
		_, byID := likedIDs[m.ID]
		if (m.Name != "" && byName) || (m.ID != "" && byID) {
			split.FollowersWhoLiked++
			continue
		}
		name := m.Name
		if name == "" {
			name = m.ID
		}
		split.FollowersWithoutLikes = append(split.FollowersWithoutLikes, name)
	}

	split.FollowerLikesPct = pct(split.FollowerLikes, split.FollowerLikes+split.NonFollowerLikes)
	split.NonFollowerLikesPct = 100 - split.FollowerLikesPct
	split.FollowerCommentsPct = pct(split.FollowerComments, split.FollowerComments+split.NonFollowerComments)
	split.NonFollowerCommentsPct = 100 - split.FollowerCommentsPct

	split.LikePercentiles = Percentiles(followerLikeCounts, ps)

	return split
}
