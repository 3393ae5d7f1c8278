// Package sqlite persists flow definitions in SQLite for single-node
// deployments. The schema mirrors the PostgreSQL store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sipsyai/agentflow/internal/core/flow"
	"github.com/sipsyai/agentflow/pkg/serialization"
)

// FlowStore implements usecases.FlowRepository on database/sql with the
// pure-Go sqlite driver.
type FlowStore struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// NewFlowStore creates a SQLite-backed flow store. A nil serializer
// defaults to the standard document serializer.
func NewFlowStore(db *sql.DB, serializer *serialization.Serializer) *FlowStore {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &FlowStore{
		db:         db,
		serializer: serializer,
		tableName:  "flows",
	}
}

// Open opens a SQLite database at the given path and prepares the
// schema. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*FlowStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	store := NewFlowStore(db, nil)
	if err := store.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// WithTableName overrides the default table name. Only alphanumeric and
// underscore are permitted, identifiers cannot be bound as parameters.
func (s *FlowStore) WithTableName(name string) *FlowStore {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

// CreateTables creates the flows table and its indexes.
func (s *FlowStore) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			category TEXT,
			document BLOB NOT NULL,
			codec TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_%s_status ON %s (status);
		CREATE INDEX IF NOT EXISTS idx_%s_updated_at ON %s (updated_at);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Save validates and upserts a flow, refreshing its timestamps.
func (s *FlowStore) Save(ctx context.Context, f *flow.Flow) error {
	if f == nil {
		return flow.ErrInvalidFlowName
	}
	if err := f.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	document, err := s.serializer.Serialize(f)
	if err != nil {
		return fmt.Errorf("failed to serialize flow: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (id, name, status, category, document, codec, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		f.ID, f.Name, string(f.Status), f.Category, document, s.serializer.CodecName(),
		f.CreatedAt.Unix(), f.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}
	return nil
}

// Get loads a flow by ID.
func (s *FlowStore) Get(ctx context.Context, id string) (*flow.Flow, error) {
	if id == "" {
		return nil, flow.ErrFlowNotFound
	}

	query := fmt.Sprintf("SELECT document FROM %s WHERE id = ?", s.tableName)

	var document []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flow.ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}

	var f flow.Flow
	if err := s.serializer.Deserialize(document, &f); err != nil {
		return nil, fmt.Errorf("failed to deserialize flow: %w", err)
	}
	return &f, nil
}

// List returns all flows, most recently updated first.
func (s *FlowStore) List(ctx context.Context) ([]*flow.Flow, error) {
	query := fmt.Sprintf("SELECT document FROM %s ORDER BY updated_at DESC, id ASC", s.tableName)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	defer rows.Close()

	var flows []*flow.Flow
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan flow row: %w", err)
		}
		var f flow.Flow
		if err := s.serializer.Deserialize(document, &f); err != nil {
			return nil, fmt.Errorf("failed to deserialize flow: %w", err)
		}
		flows = append(flows, &f)
	}
	return flows, rows.Err()
}

// Delete removes a flow by ID.
func (s *FlowStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return flow.ErrFlowNotFound
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return flow.ErrFlowNotFound
	}
	return nil
}

// Close closes the database handle.
func (s *FlowStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
