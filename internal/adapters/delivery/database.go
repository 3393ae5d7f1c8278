package delivery

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

// DatabaseSink inserts the formatted payload into a results table.
// Works with any database/sql driver; the sqlite driver from
// modernc.org/sqlite covers local deployments.
type DatabaseSink struct {
	db        *sql.DB
	tableName string
}

// NewDatabaseSink creates a sink writing to the given table, creating
// it on first use.
func NewDatabaseSink(db *sql.DB) *DatabaseSink {
	return &DatabaseSink{db: db, tableName: "flow_outputs"}
}

// EnsureSchema creates the output table if it does not exist.
func (s *DatabaseSink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_key TEXT,
			format TEXT NOT NULL,
			payload BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`, s.tableName))
	return err
}

// Deliver inserts one row and returns its key.
func (s *DatabaseSink) Deliver(ctx context.Context, cfg *flow.OutputConfig, payload []byte, contentType string) (any, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensuring output table: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (table_key, format, payload, created_at) VALUES (?, ?, ?, ?)", s.tableName),
		cfg.TableName, string(cfg.Format), payload, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting output row: %w", err)
	}
	id, _ := res.LastInsertId()
	return map[string]any{"row_id": id, "table": s.tableName}, nil
}
