package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/kittclouds/postag/pkg/model"
)

// ErrNotFound is returned when a model or run does not exist.
var ErrNotFound = errors.New("store: not found")

// SQLiteStore is the SQLite-backed data store.
// Safe for concurrent use.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines all tables.
const schema = `
-- Models: one row per saved probability table
CREATE TABLE IF NOT EXISTS models (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    words INTEGER NOT NULL,
    entries INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_models_name ON models(name, created_at);

-- Model entries: word/tag/probability rows
CREATE TABLE IF NOT EXISTS model_entries (
    model_id TEXT NOT NULL,
    word TEXT NOT NULL,
    tag TEXT NOT NULL,
    prob REAL NOT NULL,
    PRIMARY KEY (model_id, word, tag)
);

-- Runs: tagging runs against a model
-- Note: No foreign keys - referential integrity managed at application level
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    model_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    source TEXT,
    tokens INTEGER NOT NULL,
    unknown INTEGER NOT NULL,
    accuracy REAL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model_id, created_at);
`

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a custom DSN.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// =============================================================================
// Model CRUD
// =============================================================================

// SaveModel stores m under name as a new model and returns its info.
func (s *SQLiteStore) SaveModel(name string, m *model.Model) (*ModelInfo, error) {
	if name == "" {
		return nil, errors.New("store: model name is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := m.Entries()
	info := &ModelInfo{
		ID:        uuid.NewString(),
		Name:      name,
		Words:     m.Len(),
		Entries:   len(entries),
		CreatedAt: time.Now().UnixNano(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO models (id, name, words, entries, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, info.ID, info.Name, info.Words, info.Entries, info.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert model: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO model_entries (model_id, word, tag, prob) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.Exec(info.ID, e.Word, e.Tag, e.Prob); err != nil {
			return nil, fmt.Errorf("failed to insert entry %s/%s: %w", e.Word, e.Tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit model: %w", err)
	}
	return info, nil
}

// GetModel returns the info for a model, or nil if it doesn't exist.
func (s *SQLiteStore) GetModel(id string) (*ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getModel(`SELECT id, name, words, entries, created_at FROM models WHERE id = ?`, id)
}

// LatestModel returns the newest model saved under name, or nil if none.
func (s *SQLiteStore) LatestModel(name string) (*ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getModel(`
		SELECT id, name, words, entries, created_at FROM models
		WHERE name = ? ORDER BY created_at DESC, rowid DESC LIMIT 1
	`, name)
}

func (s *SQLiteStore) getModel(query string, arg string) (*ModelInfo, error) {
	var info ModelInfo
	err := s.db.QueryRow(query, arg).Scan(&info.ID, &info.Name, &info.Words, &info.Entries, &info.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// LoadModel rebuilds a stored model.
func (s *SQLiteStore) LoadModel(id string) (*model.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM models WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("model %s: %w", id, ErrNotFound)
	}

	entries, err := s.entries(id)
	if err != nil {
		return nil, err
	}
	out := make([]model.Entry, len(entries))
	for i, e := range entries {
		out[i] = model.Entry{Word: e.Word, Tag: e.Tag, Prob: e.Prob}
	}
	return model.FromEntries(out), nil
}

func (s *SQLiteStore) entries(modelID string) ([]ModelEntry, error) {
	rows, err := s.db.Query(`
		SELECT word, tag, prob FROM model_entries
		WHERE model_id = ? ORDER BY word, tag
	`, modelID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []ModelEntry
	for rows.Next() {
		var e ModelEntry
		if err := rows.Scan(&e.Word, &e.Tag, &e.Prob); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListModels returns all models, newest first.
func (s *SQLiteStore) ListModels() ([]*ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, words, entries, created_at FROM models
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []*ModelInfo
	for rows.Next() {
		var info ModelInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Words, &info.Entries, &info.CreatedAt); err != nil {
			return nil, err
		}
		models = append(models, &info)
	}
	return models, rows.Err()
}

// DeleteModel removes a model with its entries and runs.
func (s *SQLiteStore) DeleteModel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM model_entries WHERE model_id = ?`,
		`DELETE FROM runs WHERE model_id = ?`,
		`DELETE FROM models WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("failed to delete model %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// CountModels returns the number of stored models.
func (s *SQLiteStore) CountModels() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM models`).Scan(&count)
	return count, err
}

// =============================================================================
// Run CRUD
// =============================================================================

// RecordRun stores run, filling in ID and CreatedAt when unset.
func (s *SQLiteStore) RecordRun(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var accuracy sql.NullFloat64
	if run.Accuracy != nil {
		accuracy = sql.NullFloat64{Float64: *run.Accuracy, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, model_id, mode, source, tokens, unknown, accuracy, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.ModelID, run.Mode, run.Source, run.Tokens, run.Unknown, accuracy, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// ListRuns returns the runs of a model, oldest first.
func (s *SQLiteStore) ListRuns(modelID string) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs(modelID)
}

func (s *SQLiteStore) runs(modelID string) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, model_id, mode, source, tokens, unknown, accuracy, created_at
		FROM runs WHERE model_id = ? ORDER BY created_at, rowid
	`, modelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var source sql.NullString
		var accuracy sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.ModelID, &r.Mode, &source, &r.Tokens, &r.Unknown, &accuracy, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Source = source.String
		if accuracy.Valid {
			a := accuracy.Float64
			r.Accuracy = &a
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// =============================================================================
// Export / Import
// =============================================================================

// Export serializes a model with its entries and runs to JSON.
func (s *SQLiteStore) Export(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := s.getModel(`SELECT id, name, words, entries, created_at FROM models WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("export model: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("model %s: %w", id, ErrNotFound)
	}

	data := ModelExport{Model: *info}
	if data.Entries, err = s.entries(id); err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}
	if data.Runs, err = s.runs(id); err != nil {
		return nil, fmt.Errorf("export runs: %w", err)
	}
	return json.Marshal(data)
}

// Import loads a model previously produced by Export, replacing any model
// with the same ID.
func (s *SQLiteStore) Import(data []byte) (*ModelInfo, error) {
	var in ModelExport
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to unmarshal import data: %w", err)
	}
	if in.Model.ID == "" {
		return nil, errors.New("store: import has no model id")
	}
	for i, e := range in.Entries {
		if e.Word == "" || e.Tag == "" {
			return nil, fmt.Errorf("store: import entry %d: empty word or tag", i)
		}
		if !(e.Prob > 0 && e.Prob <= 1) {
			return nil, fmt.Errorf("store: import entry %s/%s: probability %v outside (0,1]", e.Word, e.Tag, e.Prob)
		}
	}
	for i, r := range in.Runs {
		if r == nil {
			return nil, fmt.Errorf("store: import run %d is null", i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := in.Model.ID
	for _, q := range []string{
		`DELETE FROM model_entries WHERE model_id = ?`,
		`DELETE FROM runs WHERE model_id = ?`,
		`DELETE FROM models WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return nil, fmt.Errorf("failed to clear model %s: %w", id, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO models (id, name, words, entries, created_at) VALUES (?, ?, ?, ?, ?)
	`, id, in.Model.Name, in.Model.Words, in.Model.Entries, in.Model.CreatedAt); err != nil {
		return nil, fmt.Errorf("import model: %w", err)
	}
	for _, e := range in.Entries {
		if _, err := tx.Exec(`INSERT INTO model_entries (model_id, word, tag, prob) VALUES (?, ?, ?, ?)`,
			id, e.Word, e.Tag, e.Prob); err != nil {
			return nil, fmt.Errorf("import entry %s/%s: %w", e.Word, e.Tag, err)
		}
	}
	for _, r := range in.Runs {
		var accuracy sql.NullFloat64
		if r.Accuracy != nil {
			accuracy = sql.NullFloat64{Float64: *r.Accuracy, Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO runs (id, model_id, mode, source, tokens, unknown, accuracy, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, id, r.Mode, r.Source, r.Tokens, r.Unknown, accuracy, r.CreatedAt); err != nil {
			return nil, fmt.Errorf("import run %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	info := in.Model
	return &info, nil
}
