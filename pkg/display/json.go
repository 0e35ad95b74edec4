package display

import (
	"encoding/json"
	"io"

	"github.com/0xmhha/likestats/pkg/aggregator"
	"github.com/0xmhha/likestats/pkg/history"
	"github.com/0xmhha/likestats/pkg/stats"
)

// jsonFormatter formats output as JSON.
type jsonFormatter struct {
	config Config
}

// report is the JSON document of one run.
type report struct {
	Run      RunInfo         `json:"run"`
	Snapshot *stats.Snapshot `json:"statistics"`
}

// FormatSnapshot implements Formatter.FormatSnapshot.
//
// Leaderboards are written in full; TopN only applies to tables and text.
func (f *jsonFormatter) FormatSnapshot(w io.Writer, snap *stats.Snapshot, run RunInfo) error {
	return f.encode(w, report{Run: run, Snapshot: snap})
}

// FormatLikes implements Formatter.FormatLikes.
func (f *jsonFormatter) FormatLikes(w io.Writer, likes []aggregator.Like) error {
	if likes == nil {
		likes = []aggregator.Like{}
	}
	return f.encode(w, likes)
}

// FormatRuns implements Formatter.FormatRuns.
//
// Snapshots are omitted; use FormatSnapshot for a single run.
func (f *jsonFormatter) FormatRuns(w io.Writer, runs []*history.Run) error {
	infos := make([]runListEntry, 0, len(runs))
	for _, r := range runs {
		entry := runListEntry{RunInfo: RunInfoOf(r), CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00")}
		if r.Snapshot != nil {
			entry.Likes = r.Snapshot.Totals.Likes
			entry.Comments = r.Snapshot.Totals.Comments
		}
		infos = append(infos, entry)
	}
	return f.encode(w, infos)
}

type runListEntry struct {
	RunInfo
	CreatedAt string `json:"created_at"`
	Likes     int    `json:"likes"`
	Comments  int    `json:"comments"`
}

func (f *jsonFormatter) encode(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	if !f.config.Compact {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(v)
}
