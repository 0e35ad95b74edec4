// Package ingest drives one aggregation run over a paginated notification
// source.
//
// An Engine owns a fresh aggregator for each Run. Pages are requested at
// offsets 0, PageSize, 2*PageSize, ... until a page shorter than PageSize
// arrives. Every record is decoded and classified on its own: a bad record
// becomes a Warning and the run continues, while a failed page fetch aborts
// the run with a *TransportError and discards everything folded so far.
package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/0xmhha/likestats/pkg/aggregator"
)

// Source delivers one page of raw notification records.
//
// Implementations return at most limit records starting at offset. A page
// shorter than limit signals the end of the feed.
type Source interface {
	FetchPage(ctx context.Context, offset, limit int) ([]json.RawMessage, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context, offset, limit int) ([]json.RawMessage, error)

// FetchPage implements Source.FetchPage.
func (f SourceFunc) FetchPage(ctx context.Context, offset, limit int) ([]json.RawMessage, error) {
	return f(ctx, offset, limit)
}

// Engine runs the fetch, classify and aggregate loop.
type Engine interface {
	// Run consumes the source from offset 0 until a short page.
	//
	// Returns:
	//   - Result holding the frozen aggregate and recorded warnings
	//   - *TransportError if any page fetch fails
	//   - ctx.Err() if the context is cancelled
	Run(ctx context.Context) (*Result, error)
}

// Config contains engine configuration.
type Config struct {
	// PageSize is the number of records requested per page.
	PageSize int

	// Prefetch fetches the next page while the current one is folded.
	Prefetch bool

	// QueueSize bounds the number of pages fetched ahead when Prefetch is set.
	QueueSize int
}

const (
	// DefaultPageSize matches the feed's maximum page size.
	DefaultPageSize = 500

	// DefaultQueueSize is the default prefetch depth.
	DefaultQueueSize = 1

	// MaxQueueSize caps the prefetch depth.
	MaxQueueSize = 4
)

// Warning records one skipped record.
type Warning struct {
	// Offset is the offset of the page the record came from.
	Offset int `json:"offset"`

	// Index is the position of the record within its page.
	Index int `json:"index"`

	// Err describes why the record was skipped.
	Err error `json:"-"`
}

// Result is the outcome of a successful run.
type Result struct {
	// State is the frozen aggregate. The engine keeps no reference to it.
	State *aggregator.State

	// Warnings lists skipped records in feed order.
	Warnings []Warning

	// Pages is the number of pages fetched.
	Pages int

	// Records is the number of raw records seen.
	Records int

	// Duration is the wall time of the run.
	Duration time.Duration
}
