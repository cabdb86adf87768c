package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/san-kum/dynobj/internal/experiment"
)

var log = commonlog.GetLogger("dynobj.storage")

const (
	metadataFile  = "metadata.json"
	stepsFile     = "steps.csv"
	snapshotsFile = "snapshots.cbor"
	indexFile     = "index.db"
)

// Store keeps one directory per run under baseDir and a SQLite index of
// run metadata alongside them.
type Store struct {
	baseDir string
	db      *sql.DB
	enc     cbor.EncMode
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}

	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return err
	}
	s.enc = enc

	db, err := sql.Open("sqlite", filepath.Join(s.baseDir, indexFile))
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		created INTEGER NOT NULL,
		data JSON NOT NULL
	)`)
	if err != nil {
		db.Close()
		return fmt.Errorf("creating runs table: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Capacity  int                `json:"capacity"`
	Steps     int                `json:"steps"`
	Failures  int                `json:"failures"`
	Leaked    int                `json:"leaked"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes the run directory and adds the run to the index.
func (s *Store) Save(result *experiment.Result, capacity int) (string, error) {
	if s.db == nil {
		return "", ErrNotOpen
	}

	now := time.Now()
	runID, runDir, err := s.newRunDir(result.Scenario, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  result.Scenario,
		Timestamp: now,
		Seed:      result.Seed,
		Capacity:  capacity,
		Steps:     len(result.Records),
		Failures:  result.Failures,
		Leaked:    result.Leaked,
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSteps(filepath.Join(runDir, stepsFile), result.Records); err != nil {
		return "", err
	}

	data, err := s.enc.Marshal(result.Snapshots)
	if err != nil {
		return "", fmt.Errorf("encoding snapshots: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, snapshotsFile), data, 0644); err != nil {
		return "", err
	}

	if err := s.index(meta); err != nil {
		return "", err
	}

	log.Infof("saved run %s (%d steps)", runID, meta.Steps)
	return runID, nil
}

func (s *Store) newRunDir(scenario string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", scenario, now.Unix())
	runID := base
	for n := 1; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func (s *Store) index(meta RunMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO runs (id, scenario, created, data) VALUES (?, ?, ?, json(?))",
		meta.ID, meta.Scenario, meta.Timestamp.UnixNano(), string(data),
	)
	if err != nil {
		return fmt.Errorf("indexing run %s: %w", meta.ID, err)
	}
	return nil
}

// List returns the indexed runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.Query("SELECT data FROM runs ORDER BY created, id")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var meta RunMetadata
		if err := json.Unmarshal([]byte(data), &meta); err != nil {
			log.Warningf("skipping unreadable index entry: %v", err)
			continue
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// Reindex rebuilds the index from the run directories on disk and returns
// the number of runs found.
func (s *Store) Reindex() (int, error) {
	if s.db == nil {
		return 0, ErrNotOpen
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, err
	}

	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return 0, fmt.Errorf("clearing index: %w", err)
	}

	n := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		if err := s.index(*meta); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSnapshots(runID string) ([]experiment.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, snapshotsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var snaps []experiment.Snapshot
	if err := cbor.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("decoding snapshots: %w", err)
	}
	return snaps, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
