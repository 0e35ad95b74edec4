package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/0xmhha/likestats/pkg/aggregator"
	"github.com/0xmhha/likestats/pkg/logger"
	"github.com/0xmhha/likestats/pkg/notification"
)

// engine implements the Engine interface.
type engine struct {
	config Config
	source Source
	logger logger.Logger
}

// page is one fetched page handed from the producer to the consumer.
type page struct {
	offset  int
	records []json.RawMessage
	err     error
}

// New creates a new ingest engine.
//
// Parameters:
//   - cfg: Engine configuration (zero PageSize means DefaultPageSize)
//   - src: Notification source
//   - log: Logger instance
//
// Returns:
//   - Configured Engine
//   - Error if configuration is invalid
func New(cfg Config, src Source, log logger.Logger) (Engine, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, cfg.PageSize)
	}

	if cfg.QueueSize == 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.QueueSize < 0 || cfg.QueueSize > MaxQueueSize {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidQueueSize, cfg.QueueSize, MaxQueueSize)
	}

	if log == nil {
		log = logger.Noop()
	}

	return &engine{
		config: cfg,
		source: src,
		logger: log.With("component", "ingest"),
	}, nil
}

// Run implements Engine.Run.
func (e *engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	agg := aggregator.New()
	result := &Result{}

	e.logger.Debug("run started",
		"page_size", e.config.PageSize,
		"prefetch", e.config.Prefetch)

	var err error
	if e.config.Prefetch {
		err = e.runPrefetch(ctx, agg, result)
	} else {
		err = e.runSequential(ctx, agg, result)
	}
	if err != nil {
		agg.Reset()
		return nil, err
	}

	result.State = agg.Freeze()
	result.Duration = time.Since(start)

	e.logger.Info("run finished",
		"pages", result.Pages,
		"records", result.Records,
		"warnings", len(result.Warnings),
		"duration", result.Duration)

	return result, nil
}

// runSequential fetches and folds one page at a time.
func (e *engine) runSequential(ctx context.Context, agg aggregator.Aggregator, result *Result) error {
	for offset := 0; ; offset += e.config.PageSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		records, err := e.fetch(ctx, offset)
		if err != nil {
			return err
		}

		e.fold(agg, result, offset, records)

		if len(records) < e.config.PageSize {
			return nil
		}
	}
}

// runPrefetch fetches pages ahead on a producer goroutine.
//
// Only this goroutine touches agg; the producer only fetches.
func (e *engine) runPrefetch(ctx context.Context, agg aggregator.Aggregator, result *Result) error {
	ctx, cancel := context.WithCancel(ctx)

	pages := make(chan page, e.config.QueueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(pages)
		e.produce(ctx, pages)
	}()

	defer func() {
		cancel()
		wg.Wait()
	}()

	for p := range pages {
		if p.err != nil {
			return p.err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		e.fold(agg, result, p.offset, p.records)

		if len(p.records) < e.config.PageSize {
			return nil
		}
	}

	// The producer only stops early when the context is done.
	return ctx.Err()
}

// produce sends pages in offset order until a short page, an error, or
// cancellation.
func (e *engine) produce(ctx context.Context, out chan<- page) {
	for offset := 0; ; offset += e.config.PageSize {
		if ctx.Err() != nil {
			return
		}

		records, err := e.fetch(ctx, offset)
		p := page{offset: offset, records: records, err: err}

		select {
		case out <- p:
		case <-ctx.Done():
			return
		}

		if err != nil || len(records) < e.config.PageSize {
			return
		}
	}
}

// fetch requests one page and maps failures to TransportError.
func (e *engine) fetch(ctx context.Context, offset int) ([]json.RawMessage, error) {
	e.logger.Debug("fetching page", "offset", offset, "limit", e.config.PageSize)

	records, err := e.source.FetchPage(ctx, offset, e.config.PageSize)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, &TransportError{Offset: offset, Err: err}
	}

	return records, nil
}

// fold decodes, classifies and ingests every record of a page.
func (e *engine) fold(agg aggregator.Aggregator, result *Result, offset int, records []json.RawMessage) {
	result.Pages++
	result.Records += len(records)

	for i, raw := range records {
		if err := e.foldOne(agg, raw); err != nil {
			result.Warnings = append(result.Warnings, Warning{Offset: offset, Index: i, Err: err})

			fields := []interface{}{"offset", offset, "index", i, "error", err}
			var malformed *notification.MalformedRecordError
			if errors.As(err, &malformed) && malformed.Field != "" {
				fields = append(fields, "field", malformed.Field)
			}
			e.logger.Warn("skipped malformed record", fields...)
		}
	}
}

func (e *engine) foldOne(agg aggregator.Aggregator, raw json.RawMessage) error {
	rec, err := notification.Decode(raw)
	if err != nil {
		return err
	}

	ev, err := notification.Classify(rec)
	if err != nil {
		return err
	}

	return agg.Ingest(ev)
}
