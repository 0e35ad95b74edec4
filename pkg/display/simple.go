package display

import (
	"fmt"
	"io"

	"github.com/0xmhha/likestats/pkg/aggregator"
	"github.com/0xmhha/likestats/pkg/history"
	"github.com/0xmhha/likestats/pkg/stats"
)

// simpleFormatter formats output as simple text.
type simpleFormatter struct {
	config Config
}

// lineWriter writes lines until the first error.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) printf(format string, args ...interface{}) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format+"\n", args...)
}

// FormatSnapshot implements Formatter.FormatSnapshot.
func (f *simpleFormatter) FormatSnapshot(w io.Writer, snap *stats.Snapshot, run RunInfo) error {
	lw := &lineWriter{w: w}
	t := snap.Totals

	lw.printf("Total Likes: %s", formatNumber(t.Likes))
	lw.printf("Total Comments: %s", formatNumber(t.Comments))
	lw.printf("Total Collected: %s", formatNumber(t.Collects))
	lw.printf("Number of Users who Liked: %s", formatNumber(t.UsersWhoLiked))
	lw.printf("Number of Users who Commented: %s", formatNumber(t.UsersWhoCommented))
	lw.printf("Number of Posts Collected: %s", formatNumber(t.ResourcesCollected))
	lw.printf("Average Likes per User: %s", formatValue(snap.AvgLikesPerUser))

	if snap.MostCommented != nil {
		lw.printf("Most Commented Post: %s (%s comments)", snap.MostCommented.Key, formatNumber(snap.MostCommented.Count))
	}
	if snap.MostCollected != nil {
		lw.printf("Most Collected Post: %s (%s collections)", snap.MostCollected.Key, formatNumber(snap.MostCollected.Count))
	}

	f.writeRanks(lw, "Likes by user", snap.LikesByUser)
	f.writeRanks(lw, "Comments by user", snap.CommentsByUser)
	f.writeRanks(lw, "Comments by post", snap.CommentsByResource)
	f.writeRanks(lw, "Collected by post", snap.CollectsByResource)

	lw.printf("Like percentiles:")
	for _, p := range snap.LikePercentiles {
		lw.printf("  %sth percentile: %s", formatPercentileNumber(p.P), formatValue(p.Value))
	}
	lw.printf("Comment percentiles:")
	for _, p := range snap.CommentPercentiles {
		lw.printf("  %sth percentile: %s", formatPercentileNumber(p.P), formatValue(p.Value))
	}

	for _, s := range snap.TopShares {
		lw.printf("Top %s of users (%s) left %s of likes",
			formatPct(s.Fraction*100), formatNumber(s.Users), formatPct(s.LikesPct))
	}

	if snap.Followers.Available {
		split := snap.Followers
		lw.printf("%s of likes came from followers", formatPct(split.FollowerLikesPct))
		lw.printf("%s of likes came from non-followers", formatPct(split.NonFollowerLikesPct))
		lw.printf("%s of %s followers didn't leave any likes",
			formatNumber(len(split.FollowersWithoutLikes)), formatNumber(split.Followers))

		if len(split.LikePercentiles) == 0 || !split.LikePercentiles[0].Value.Defined {
			lw.printf("No followers have left any likes.")
		}
		for _, p := range split.LikePercentiles {
			if !p.Value.Defined {
				continue
			}
			lw.printf("%s%% of followers left <= %s likes (%s at or below)",
				formatPercentileNumber(p.P), formatValue(p.Value), formatValuePct(p.AtOrBelowPct))
		}
	}

	if run.Duration > 0 {
		lw.printf("Execution time: %.2f seconds", run.Duration.Seconds())
	}

	return lw.err
}

// writeRanks writes a leaderboard on one line per entry.
func (f *simpleFormatter) writeRanks(lw *lineWriter, title string, ranks []stats.Rank) {
	if len(ranks) == 0 {
		lw.printf("%s: %s", title, NoData)
		return
	}

	lw.printf("%s:", title)
	for i, r := range limit(ranks, f.config.TopN) {
		lw.printf("  #%d %s: %s", i+1, r.Key, formatNumber(r.Count))
	}
}

// FormatLikes implements Formatter.FormatLikes.
func (f *simpleFormatter) FormatLikes(w io.Writer, likes []aggregator.Like) error {
	lw := &lineWriter{w: w}
	for _, l := range likes {
		at := "-"
		if !l.At.IsZero() {
			at = l.At.Local().Format(timeLayout)
		}
		lw.printf("%s %s liked %s", at, l.Actor, l.Resource)
	}
	return lw.err
}

// FormatRuns implements Formatter.FormatRuns.
func (f *simpleFormatter) FormatRuns(w io.Writer, runs []*history.Run) error {
	lw := &lineWriter{w: w}
	if len(runs) == 0 {
		lw.printf("No saved runs.")
		return lw.err
	}

	for _, r := range runs {
		likes := 0
		if r.Snapshot != nil {
			likes = r.Snapshot.Totals.Likes
		}
		name := r.Name
		if name == "" {
			name = "-"
		}
		lw.printf("%s %s %s %s likes", r.ID, name, r.CreatedAt.Local().Format(timeLayout), formatNumber(likes))
	}
	return lw.err
}
