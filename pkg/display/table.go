package display

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/0xmhha/likestats/pkg/aggregator"
	"github.com/0xmhha/likestats/pkg/history"
	"github.com/0xmhha/likestats/pkg/stats"
)

// timeLayout is used for timestamps in tables.
const timeLayout = "2006-01-02 15:04:05"

// tableFormatter formats output as tables.
type tableFormatter struct {
	config Config
}

// FormatSnapshot implements Formatter.FormatSnapshot.
func (f *tableFormatter) FormatSnapshot(w io.Writer, snap *stats.Snapshot, run RunInfo) error {
	if err := f.section(w, "Summary"); err != nil {
		return err
	}
	if err := f.writeTable(w, table.Row{"Metric", "Value"}, f.summaryRows(snap, run), nil, 2); err != nil {
		return err
	}

	boards := []struct {
		title  string
		header table.Row
		ranks  []stats.Rank
	}{
		{"Likes by User", table.Row{"#", "User", "Likes"}, snap.LikesByUser},
		{"Comments by User", table.Row{"#", "User", "Comments"}, snap.CommentsByUser},
		{"Comments by Resource", table.Row{"#", "Resource", "Comments"}, snap.CommentsByResource},
		{"Collected by Resource", table.Row{"#", "Resource", "Collected"}, snap.CollectsByResource},
	}
	for _, b := range boards {
		if err := f.section(w, b.title); err != nil {
			return err
		}
		if err := f.writeRanks(w, b.header, b.ranks); err != nil {
			return err
		}
	}

	if err := f.section(w, "Percentiles"); err != nil {
		return err
	}
	if err := f.writePercentiles(w, snap); err != nil {
		return err
	}

	if err := f.section(w, "Top Contributors"); err != nil {
		return err
	}
	if err := f.writeTopShares(w, snap.TopShares); err != nil {
		return err
	}

	if snap.Followers.Available {
		if err := f.section(w, "Followers"); err != nil {
			return err
		}
		if err := f.writeFollowers(w, snap.Followers); err != nil {
			return err
		}
	}

	return nil
}

// summaryRows builds the headline metric rows.
func (f *tableFormatter) summaryRows(snap *stats.Snapshot, run RunInfo) []table.Row {
	t := snap.Totals
	rows := []table.Row{
		{"Total Likes", formatNumber(t.Likes)},
		{"Total Comments", formatNumber(t.Comments)},
		{"Total Collected", formatNumber(t.Collects)},
		{"Users who Liked", formatNumber(t.UsersWhoLiked)},
		{"Users who Commented", formatNumber(t.UsersWhoCommented)},
		{"Posts Collected", formatNumber(t.ResourcesCollected)},
		{"Average Likes per User", formatValue(snap.AvgLikesPerUser)},
	}

	if snap.MostCommented != nil {
		rows = append(rows, table.Row{"Most Commented Post",
			fmt.Sprintf("%s (%s)", snap.MostCommented.Key, formatNumber(snap.MostCommented.Count))})
	}
	if snap.MostCollected != nil {
		rows = append(rows, table.Row{"Most Collected Post",
			fmt.Sprintf("%s (%s)", snap.MostCollected.Key, formatNumber(snap.MostCollected.Count))})
	}

	if !f.config.Compact {
		rows = append(rows,
			table.Row{"Duplicate Likes", formatNumber(t.DuplicateLikes)},
			table.Row{"Ignored Notifications", formatNumber(t.Ignored)},
		)
		if !snap.FirstActivity.IsZero() {
			rows = append(rows,
				table.Row{"First Activity", snap.FirstActivity.Local().Format(timeLayout)},
				table.Row{"Last Activity", snap.LastActivity.Local().Format(timeLayout)},
			)
		}
		if run.Pages > 0 {
			rows = append(rows,
				table.Row{"Pages / Records", fmt.Sprintf("%s / %s", formatNumber(run.Pages), formatNumber(run.Records))},
				table.Row{"Skipped Records", formatNumber(run.Warnings)},
			)
		}
		if run.Duration > 0 {
			rows = append(rows, table.Row{"Execution Time", fmt.Sprintf("%.2f seconds", run.Duration.Seconds())})
		}
	}

	return rows
}

// writeRanks writes a numbered leaderboard.
func (f *tableFormatter) writeRanks(w io.Writer, header table.Row, ranks []stats.Rank) error {
	if len(ranks) == 0 {
		_, err := fmt.Fprintln(w, NoData)
		return err
	}

	shown := limit(ranks, f.config.TopN)
	rows := make([]table.Row, 0, len(shown))
	for i, r := range shown {
		rows = append(rows, table.Row{i + 1, r.Key, formatNumber(r.Count)})
	}

	var footer table.Row
	if len(shown) < len(ranks) {
		footer = table.Row{"", fmt.Sprintf("%d of %d shown", len(shown), len(ranks)), ""}
	}

	return f.writeTable(w, header, rows, footer, 1, 3)
}

// writePercentiles writes like and comment percentiles side by side.
func (f *tableFormatter) writePercentiles(w io.Writer, snap *stats.Snapshot) error {
	rows := make([]table.Row, 0, len(snap.LikePercentiles))
	for i, p := range snap.LikePercentiles {
		comments := stats.Value{}
		if i < len(snap.CommentPercentiles) {
			comments = snap.CommentPercentiles[i].Value
		}
		rows = append(rows, table.Row{formatPercentileLabel(p.P), formatValue(p.Value), formatValue(comments)})
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, NoData)
		return err
	}

	return f.writeTable(w, table.Row{"Percentile", "Likes", "Comments"}, rows, nil, 2, 3)
}

// writeTopShares writes the top-N contribution shares.
func (f *tableFormatter) writeTopShares(w io.Writer, shares []stats.TopShare) error {
	rows := make([]table.Row, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, table.Row{
			fmt.Sprintf("Top %s", formatPct(s.Fraction*100)),
			formatNumber(s.Users),
			formatPct(s.UsersPct),
			formatNumber(s.Likes),
			formatPct(s.LikesPct),
		})
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, NoData)
		return err
	}

	return f.writeTable(w, table.Row{"Group", "Users", "% Users", "Likes", "% Likes"}, rows, nil, 2, 3, 4, 5)
}

// writeFollowers writes the follower split and follower percentiles.
func (f *tableFormatter) writeFollowers(w io.Writer, split stats.FollowerSplit) error {
	rows := []table.Row{
		{"Followers", formatNumber(split.Followers)},
		{"Followers who Liked", formatNumber(split.FollowersWhoLiked)},
		{"Followers without Likes", formatNumber(len(split.FollowersWithoutLikes))},
		{"Likes from Followers", fmt.Sprintf("%s (%s)", formatNumber(split.FollowerLikes), formatPct(split.FollowerLikesPct))},
		{"Likes from Non-followers", fmt.Sprintf("%s (%s)", formatNumber(split.NonFollowerLikes), formatPct(split.NonFollowerLikesPct))},
		{"Comments from Followers", fmt.Sprintf("%s (%s)", formatNumber(split.FollowerComments), formatPct(split.FollowerCommentsPct))},
		{"Comments from Non-followers", fmt.Sprintf("%s (%s)", formatNumber(split.NonFollowerComments), formatPct(split.NonFollowerCommentsPct))},
	}
	if err := f.writeTable(w, table.Row{"Metric", "Value"}, rows, nil, 2); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	pRows := make([]table.Row, 0, len(split.LikePercentiles))
	for _, p := range split.LikePercentiles {
		pRows = append(pRows, table.Row{formatPercentileLabel(p.P), formatValue(p.Value), formatValuePct(p.AtOrBelowPct)})
	}
	if len(pRows) == 0 || !split.LikePercentiles[0].Value.Defined {
		_, err := fmt.Fprintln(w, "No followers have left any likes.")
		return err
	}

	return f.writeTable(w, table.Row{"Percentile", "Likes", "Followers at or below"}, pRows, nil, 2, 3)
}

// FormatLikes implements Formatter.FormatLikes.
func (f *tableFormatter) FormatLikes(w io.Writer, likes []aggregator.Like) error {
	if err := f.section(w, "Recent Likes"); err != nil {
		return err
	}

	if len(likes) == 0 {
		_, err := fmt.Fprintln(w, NoData)
		return err
	}

	rows := make([]table.Row, 0, len(likes))
	for _, l := range likes {
		at := "-"
		if !l.At.IsZero() {
			at = l.At.Local().Format(timeLayout)
		}
		rows = append(rows, table.Row{at, l.Actor, l.Resource})
	}

	return f.writeTable(w, table.Row{"Time", "User", "Post"}, rows, nil)
}

// FormatRuns implements Formatter.FormatRuns.
func (f *tableFormatter) FormatRuns(w io.Writer, runs []*history.Run) error {
	if err := f.section(w, "Saved Runs"); err != nil {
		return err
	}

	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No saved runs.")
		return err
	}

	rows := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		likes, comments := 0, 0
		if r.Snapshot != nil {
			likes = r.Snapshot.Totals.Likes
			comments = r.Snapshot.Totals.Comments
		}
		rows = append(rows, table.Row{
			r.ID,
			r.Name,
			r.UserID,
			r.CreatedAt.Local().Format(timeLayout),
			formatNumber(likes),
			formatNumber(comments),
		})
	}

	return f.writeTable(w, table.Row{"ID", "Name", "User", "Created", "Likes", "Comments"}, rows, nil, 5, 6)
}

// section writes a section header.
func (f *tableFormatter) section(w io.Writer, title string) error {
	return writeHeader(w, title, f.config.Compact, f.config.Color)
}

// writeTable renders a go-pretty table to w.
//
// rightAligned lists 1-based column numbers holding numbers.
func (f *tableFormatter) writeTable(w io.Writer, header table.Row, rows []table.Row, footer table.Row, rightAligned ...int) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	if f.config.Compact {
		tbl.Style().Options.DrawBorder = false
		tbl.Style().Options.SeparateColumns = false
	}

	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, n := range rightAligned {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	tbl.SetColumnConfigs(configs)

	tbl.AppendHeader(header)
	tbl.AppendRows(rows)
	if footer != nil {
		tbl.AppendFooter(footer)
	}

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
