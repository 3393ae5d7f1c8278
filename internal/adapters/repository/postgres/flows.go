// Package postgres persists flow definitions in PostgreSQL. The full
// flow document is serialized into a single column; the columns kept
// alongside it exist for querying only.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sipsyai/agentflow/internal/core/flow"
	"github.com/sipsyai/agentflow/pkg/serialization"
)

// FlowStore implements usecases.FlowRepository on a pgx pool.
type FlowStore struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// NewFlowStore creates a PostgreSQL-backed flow store. A nil serializer
// defaults to the standard document serializer.
func NewFlowStore(pool *pgxpool.Pool, serializer *serialization.Serializer) *FlowStore {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &FlowStore{
		pool:       pool,
		serializer: serializer,
		tableName:  "flows",
	}
}

// CreateTables creates the flows table and its indexes.
func (s *FlowStore) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(50) NOT NULL,
			category VARCHAR(255),
			document BYTEA NOT NULL,
			codec VARCHAR(50) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_%s_status ON %s (status);
		CREATE INDEX IF NOT EXISTS idx_%s_category ON %s (category);
		CREATE INDEX IF NOT EXISTS idx_%s_updated_at ON %s (updated_at);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
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
		INSERT INTO %s (id, name, status, category, document, codec, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			category = EXCLUDED.category,
			document = EXCLUDED.document,
			codec = EXCLUDED.codec,
			updated_at = EXCLUDED.updated_at
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		f.ID, f.Name, string(f.Status), f.Category, document, s.serializer.CodecName(), f.CreatedAt, f.UpdatedAt)
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

	query := fmt.Sprintf("SELECT document FROM %s WHERE id = $1", s.tableName)

	var document []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	query := fmt.Sprintf("SELECT document FROM %s ORDER BY updated_at DESC", s.tableName)

	rows, err := s.pool.Query(ctx, query)
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

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return flow.ErrFlowNotFound
	}
	return nil
}

// Close releases the connection pool.
func (s *FlowStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
