package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/mst-api/internal/timetable"
)

// storeRow is the single-row shape backing timetable_documents: one
// workspace's whole Store round-trips as one JSONB document, the same
// upsert-by-key pattern the configuration repository uses for its
// keyed settings rows.
type storeRow struct {
	Key       string         `db:"key"`
	Document  types.JSONText `db:"document"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// StoreRepository persists a timetable.Store as a single JSONB document
// per workspace key.
type StoreRepository struct {
	db *sqlx.DB
}

// NewStoreRepository constructs the repository.
func NewStoreRepository(db *sqlx.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// Load fetches the document for workspace and unmarshals it onto st. A
// missing row leaves st untouched (a fresh, empty Store).
func (r *StoreRepository) Load(ctx context.Context, workspace string, st *timetable.Store) error {
	const query = `SELECT key, document, updated_at FROM timetable_documents WHERE key = $1`
	var row storeRow
	if err := r.db.GetContext(ctx, &row, query, workspace); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("load timetable document %s: %w", workspace, err)
	}

	var doc timetable.Document
	if err := json.Unmarshal(row.Document, &doc); err != nil {
		return fmt.Errorf("unmarshal timetable document %s: %w", workspace, err)
	}
	st.LoadDocument(doc)
	return nil
}

// Save upserts the whole document for workspace in one statement.
func (r *StoreRepository) Save(ctx context.Context, workspace string, st *timetable.Store) error {
	payload, err := json.Marshal(st.ToDocument())
	if err != nil {
		return fmt.Errorf("marshal timetable document %s: %w", workspace, err)
	}

	const query = `INSERT INTO timetable_documents (key, document, updated_at)
VALUES (:key, :document, :updated_at)
ON CONFLICT (key)
DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`
	row := storeRow{Key: workspace, Document: types.JSONText(payload), UpdatedAt: time.Now().UTC()}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert timetable document %s: %w", workspace, err)
	}
	return nil
}
