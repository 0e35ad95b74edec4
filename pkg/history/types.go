// Package history stores past analysis runs with persistent storage.
//
// Each run is keyed by a random UUID and may carry a unique friendly name,
// indexed for lookup. Only the derived statistics are stored: no raw
// notifications and never the access token.
//
// Example usage:
//
//	store, err := history.New(history.Config{
//	    DBPath: "~/.config/likestats/history.db",
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	run := &history.Run{UserID: "me", Snapshot: snap}
//	if err := store.Save(run); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("saved run", run.ID)
package history

import (
	"time"

	"github.com/0xmhha/likestats/pkg/stats"
)

// Run is one stored analysis run.
type Run struct {
	// ID is the run identifier (UUID, assigned by Save).
	ID string `json:"id"`

	// Name is an optional friendly name (unique when set).
	Name string `json:"name,omitempty"`

	// UserID is the analyzed account.
	UserID string `json:"user_id,omitempty"`

	// Source describes where the notifications came from (API URL or file).
	Source string `json:"source,omitempty"`

	// CreatedAt is when the run was saved.
	CreatedAt time.Time `json:"created_at"`

	// Duration is the wall time of the ingestion.
	Duration time.Duration `json:"duration"`

	// Pages and Records count what was fetched.
	Pages   int `json:"pages"`
	Records int `json:"records"`

	// Warnings counts skipped malformed records.
	Warnings int `json:"warnings"`

	// Snapshot holds the computed statistics.
	Snapshot *stats.Snapshot `json:"snapshot"`
}

// Store provides run history CRUD operations.
type Store interface {
	// Save stores a new run, assigning its ID and CreatedAt.
	//
	// Returns error if:
	//   - run or its snapshot is nil
	//   - Name is already taken
	//   - Database operation fails
	Save(run *Run) error

	// Get retrieves a run by ID.
	//
	// Returns:
	//   - Run if found
	//   - ErrRunNotFound if not found
	//   - ErrInvalidID for a malformed ID
	Get(id string) (*Run, error)

	// GetByName retrieves a run by its friendly name.
	GetByName(name string) (*Run, error)

	// Resolve retrieves a run by ID, or by name when ref is not an ID.
	Resolve(ref string) (*Run, error)

	// List returns all runs, newest first.
	List() ([]*Run, error)

	// SetName assigns or replaces a run's friendly name.
	//
	// Returns ErrNameConflict if another run already has the name.
	SetName(id, name string) error

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(id string) error

	// Close closes the database connection and releases resources.
	Close() error
}

// Config contains history store configuration.
type Config struct {
	// DBPath is the BoltDB file path.
	DBPath string

	// Timeout is the database lock timeout (default: 1 second).
	Timeout time.Duration
}
