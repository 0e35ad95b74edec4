package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/0xmhha/likestats/pkg/logger"
)

// FileSource serves pages from an in-memory copy of a dump.
type FileSource struct {
	records []json.RawMessage
}

// NewFileSource creates a source over records.
func NewFileSource(records []json.RawMessage) *FileSource {
	return &FileSource{records: records}
}

// LoadFile reads a dump written by WriteDump, or a bare JSON array of
// notifications.
func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}

	records, err := decodeDump(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return NewFileSource(records), nil
}

func decodeDump(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidDump)
	}

	if data[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDump, err)
		}
		return records, nil
	}

	var page struct {
		Notifications *[]json.RawMessage `json:"notifications"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDump, err)
	}
	if page.Notifications == nil {
		return nil, fmt.Errorf("%w: missing \"notifications\" array", ErrInvalidDump)
	}
	return *page.Notifications, nil
}

// Len returns the number of records in the dump.
func (s *FileSource) Len() int {
	return len(s.records)
}

// FetchPage returns the records in [offset, offset+limit).
func (s *FileSource) FetchPage(ctx context.Context, offset, limit int) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset=%d limit=%d", ErrInvalidPage, offset, limit)
	}
	if offset >= len(s.records) {
		return []json.RawMessage{}, nil
	}

	end := offset + limit
	if end > len(s.records) {
		end = len(s.records)
	}

	page := make([]json.RawMessage, end-offset)
	copy(page, s.records[offset:end])
	return page, nil
}

// Pager is anything that serves offset/limit pages.
type Pager interface {
	FetchPage(ctx context.Context, offset, limit int) ([]json.RawMessage, error)
}

// Collect reads every page of p until a short page.
func Collect(ctx context.Context, p Pager, pageSize int, log logger.Logger) ([]json.RawMessage, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: limit=%d", ErrInvalidPage, pageSize)
	}
	if log == nil {
		log = logger.Noop()
	}

	var all []json.RawMessage
	for offset := 0; ; offset += pageSize {
		page, err := p.FetchPage(ctx, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load data at offset %d: %w", offset, err)
		}
		all = append(all, page...)

		log.Debug("page collected", "offset", offset, "records", len(page))

		if len(page) < pageSize {
			return all, nil
		}
	}
}

// WriteDump writes records in the notifications page format.
func WriteDump(w io.Writer, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(notificationsPage{Notifications: records}); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	return nil
}

// SaveDump writes records to path, replacing any existing file.
func SaveDump(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".likestats-dump-*")
	if err != nil {
		return fmt.Errorf("failed to create dump: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := WriteDump(tmp, records); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close dump: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save dump: %w", err)
	}
	return nil
}
