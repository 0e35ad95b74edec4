// Package stats derives analytics from a frozen aggregate.
//
// Summarize is a pure function: it reads an *aggregator.State and an
// optional follower set and returns a Snapshot. Statistics that have no
// meaning for the input (an average over zero users, percentiles of an empty
// distribution) are reported as undefined Values, never as errors.
package stats

import (
	"encoding/json"
	"strconv"
	"time"
)

// NoData is the text form of an undefined Value.
const NoData = "no data"

// Value is a statistic that may be undefined.
//
// Undefined values marshal to JSON null.
type Value struct {
	V       float64
	Defined bool
}

// Of returns a defined Value.
func Of(v float64) Value {
	return Value{V: v, Defined: true}
}

// String formats the value with two decimals, or NoData.
func (v Value) String() string {
	if !v.Defined {
		return NoData
	}
	return strconv.FormatFloat(v.V, 'f', 2, 64)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}

// Rank is one row of a leaderboard.
type Rank struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Percentile is the value of a distribution at percentile P.
type Percentile struct {
	// P is the percentile, 0 to 100.
	P float64 `json:"p"`

	// Value is the linearly interpolated value at rank P/100*(n-1).
	Value Value `json:"value"`

	// AtOrBelowPct is the share of the population whose value is <= Value.
	AtOrBelowPct Value `json:"at_or_below_pct"`
}

// TopShare reports how much of the like total the top users hold.
type TopShare struct {
	Fraction float64 `json:"fraction"`
	Users    int     `json:"users"`
	UsersPct float64 `json:"users_pct"`
	Likes    int     `json:"likes"`
	LikesPct float64 `json:"likes_pct"`
}

// Totals holds the headline counts.
type Totals struct {
	Likes              int `json:"likes"`
	Comments           int `json:"comments"`
	Collects           int `json:"collects"`
	UsersWhoLiked      int `json:"users_who_liked"`
	UsersWhoCommented  int `json:"users_who_commented"`
	ResourcesCommented int `json:"resources_commented"`
	ResourcesCollected int `json:"resources_collected"`
	DuplicateLikes     int `json:"duplicate_likes"`
	Ignored            int `json:"ignored"`
}

// FollowerSplit partitions likes and comments by follower status.
type FollowerSplit struct {
	// Available is false when no follower set was supplied.
	Available bool `json:"available"`

	Followers             int      `json:"followers"`
	FollowersWhoLiked     int      `json:"followers_who_liked"`
	FollowersWithoutLikes []string `json:"followers_without_likes,omitempty"`

	FollowerLikes       int     `json:"follower_likes"`
	NonFollowerLikes    int     `json:"non_follower_likes"`
	FollowerLikesPct    float64 `json:"follower_likes_pct"`
	NonFollowerLikesPct float64 `json:"non_follower_likes_pct"`

	FollowerComments       int     `json:"follower_comments"`
	NonFollowerComments    int     `json:"non_follower_comments"`
	FollowerCommentsPct    float64 `json:"follower_comments_pct"`
	NonFollowerCommentsPct float64 `json:"non_follower_comments_pct"`

	// LikePercentiles is the distribution of like counts among followers
	// who liked at least once.
	LikePercentiles []Percentile `json:"like_percentiles"`
}

// Snapshot is the complete analytics of one run.
type Snapshot struct {
	Totals          Totals `json:"totals"`
	AvgLikesPerUser Value  `json:"avg_likes_per_user"`

	LikesByUser        []Rank `json:"likes_by_user"`
	CommentsByUser     []Rank `json:"comments_by_user"`
	CommentsByResource []Rank `json:"comments_by_resource"`
	CollectsByResource []Rank `json:"collects_by_resource"`

	// MostCommented and MostCollected are nil when there is no such resource.
	MostCommented *Rank `json:"most_commented,omitempty"`
	MostCollected *Rank `json:"most_collected,omitempty"`

	LikePercentiles    []Percentile `json:"like_percentiles"`
	CommentPercentiles []Percentile `json:"comment_percentiles"`
	TopShares          []TopShare   `json:"top_shares"`

	Followers FollowerSplit `json:"followers"`

	FirstActivity time.Time `json:"first_activity"`
	LastActivity  time.Time `json:"last_activity"`
}

// Config selects which percentiles and shares are computed.
type Config struct {
	// Percentiles for the like and comment distributions.
	Percentiles []float64 `json:"percentiles" yaml:"percentiles"`

	// FollowerPercentiles for the follower like distribution.
	FollowerPercentiles []float64 `json:"follower_percentiles" yaml:"follower_percentiles"`

	// TopFractions for the top-N contribution shares.
	TopFractions []float64 `json:"top_fractions" yaml:"top_fractions"`
}

// DefaultConfig returns the standard percentile and share sets.
func DefaultConfig() Config {
	return Config{
		Percentiles:         []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		FollowerPercentiles: []float64{0, 1, 5, 10, 25, 50, 75, 90, 95, 100},
		TopFractions:        []float64{0.10, 0.25, 0.50},
	}
}
