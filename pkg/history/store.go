package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/0xmhha/likestats/pkg/logger"
)

// Bucket names.
var (
	bucketRuns  = []byte("runs")  // ID -> Run
	bucketNames = []byte("names") // Name -> ID (index)
)

// store implements the Store interface using BoltDB.
type store struct {
	db     *bolt.DB
	logger logger.Logger
	config Config
}

// New creates a new history store.
//
// Parameters:
//   - cfg: Store configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Store
//   - Error if database cannot be opened
func New(cfg Config, log logger.Logger) (Store, error) {
	if cfg.DBPath == "" {
		return nil, ErrNoDBPath
	}

	// Set default timeout.
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	if log == nil {
		log = logger.Noop()
	}

	// Expand home directory in path.
	dbPath := expandHome(cfg.DBPath)

	// Create directory if it doesn't exist.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database.
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Initialize buckets.
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, createErr := tx.CreateBucketIfNotExists(bucketRuns); createErr != nil {
			return fmt.Errorf("failed to create runs bucket: %w", createErr)
		}
		if _, createErr := tx.CreateBucketIfNotExists(bucketNames); createErr != nil {
			return fmt.Errorf("failed to create names bucket: %w", createErr)
		}
		return nil
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, err
	}

	log.Debug("history store opened", "db_path", dbPath)

	return &store{
		db:     db,
		logger: log,
		config: cfg,
	}, nil
}

// Save implements Store.Save.
//
// run.ID, run.Name and run.CreatedAt are only updated when the run is stored.
func (s *store) Save(run *Run) error {
	if run == nil || run.Snapshot == nil {
		return ErrInvalidRun
	}

	stored := *run
	stored.Name = strings.TrimSpace(run.Name)
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()

	err := s.db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		names := tx.Bucket(bucketNames)

		// Check if name is already taken.
		if stored.Name != "" && names.Get([]byte(stored.Name)) != nil {
			return ErrNameConflict
		}

		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}

		if err := runs.Put([]byte(stored.ID), data); err != nil {
			return fmt.Errorf("failed to store run: %w", err)
		}

		if stored.Name != "" {
			if err := names.Put([]byte(stored.Name), []byte(stored.ID)); err != nil {
				return fmt.Errorf("failed to store name index: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	run.ID = stored.ID
	run.Name = stored.Name
	run.CreatedAt = stored.CreatedAt

	s.logger.Info("run saved",
		"id", run.ID,
		"name", run.Name)

	return nil
}

// Get implements Store.Get.
func (s *store) Get(id string) (*Run, error) {
	if !isValidID(id) {
		return nil, ErrInvalidID
	}

	var run *Run

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRuns).Get([]byte(id))
		if data == nil {
			return ErrRunNotFound
		}

		var r Run
		if unmarshalErr := json.Unmarshal(data, &r); unmarshalErr != nil {
			return fmt.Errorf("failed to unmarshal run: %w", unmarshalErr)
		}

		run = &r
		return nil
	})

	if err != nil {
		return nil, err
	}

	return run, nil
}

// GetByName implements Store.GetByName.
func (s *store) GetByName(name string) (*Run, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	var id string

	// First, get ID from name index.
	if err := s.db.View(func(tx *bolt.Tx) error {
		idBytes := tx.Bucket(bucketNames).Get([]byte(name))
		if idBytes == nil {
			return ErrRunNotFound
		}

		id = string(idBytes)
		return nil
	}); err != nil {
		return nil, err
	}

	// Then, get run by ID.
	return s.Get(id)
}

// Resolve implements Store.Resolve.
func (s *store) Resolve(ref string) (*Run, error) {
	if isValidID(ref) {
		run, err := s.Get(ref)
		if !errors.Is(err, ErrRunNotFound) {
			return run, err
		}
	}
	return s.GetByName(ref)
}

// List implements Store.List.
func (s *store) List() ([]*Run, error) {
	runs := make([]*Run, 0, 10)

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var run Run
			if unmarshalErr := json.Unmarshal(v, &run); unmarshalErr != nil {
				s.logger.Warn("failed to unmarshal run",
					"id", string(k),
					"error", unmarshalErr)
				return nil // Skip invalid entries.
			}

			runs = append(runs, &run)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	return runs, nil
}

// SetName implements Store.SetName.
func (s *store) SetName(id, name string) error {
	if !isValidID(id) {
		return ErrInvalidID
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		names := tx.Bucket(bucketNames)

		data := runs.Get([]byte(id))
		if data == nil {
			return ErrRunNotFound
		}

		var run Run
		if err := json.Unmarshal(data, &run); err != nil {
			return fmt.Errorf("failed to unmarshal run: %w", err)
		}

		if run.Name == name {
			return nil
		}

		// Check if new name is already taken.
		if names.Get([]byte(name)) != nil {
			return ErrNameConflict
		}

		// Remove old name from index.
		if run.Name != "" {
			if err := names.Delete([]byte(run.Name)); err != nil {
				return fmt.Errorf("failed to delete old name index: %w", err)
			}
		}

		if err := names.Put([]byte(name), []byte(id)); err != nil {
			return fmt.Errorf("failed to store new name index: %w", err)
		}

		run.Name = name
		updated, err := json.Marshal(&run)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}
		if err := runs.Put([]byte(id), updated); err != nil {
			return fmt.Errorf("failed to update run: %w", err)
		}

		s.logger.Info("run renamed", "id", id, "name", name)
		return nil
	})
}

// Delete implements Store.Delete.
func (s *store) Delete(id string) error {
	if !isValidID(id) {
		return ErrInvalidID
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		names := tx.Bucket(bucketNames)

		data := runs.Get([]byte(id))
		if data == nil {
			// Run doesn't exist, no error.
			return nil
		}

		// Unmarshal to get name.
		var run Run
		if err := json.Unmarshal(data, &run); err != nil {
			return fmt.Errorf("failed to unmarshal run: %w", err)
		}

		if err := runs.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}

		if run.Name != "" {
			if err := names.Delete([]byte(run.Name)); err != nil {
				return fmt.Errorf("failed to delete name index: %w", err)
			}
		}

		s.logger.Info("run deleted",
			"id", id,
			"name", run.Name)

		return nil
	})
}

// Close implements Store.Close.
func (s *store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.logger.Debug("history store closed")
	return nil
}

// isValidID reports whether id is a canonical UUID string.
func isValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
