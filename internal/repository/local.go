package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/eob"
)

// LocalStore is a SQLite-backed analysis history for the CLI. Same persisted
// shape as the Postgres repository: one row per analyzed document with the
// claim stored as a JSON blob.
type LocalStore struct {
	db *sql.DB
}

const localSchema = `
CREATE TABLE IF NOT EXISTS eob_records (
	id                TEXT PRIMARY KEY,
	document_name     TEXT NOT NULL,
	claim_number      TEXT NOT NULL,
	detect_confidence INTEGER NOT NULL,
	record            TEXT NOT NULL,
	created_at        TEXT NOT NULL
);`

// OpenLocal opens (creating if needed) the history database at path.
func OpenLocal(path string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(localSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &LocalStore{db: db}, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) SaveRecord(ctx context.Context, documentName string, detectConfidence int, rec *eob.Record) (*StoredRecord, error) {
	blob, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	row := &StoredRecord{
		ID:               uuid.New(),
		DocumentName:     documentName,
		ClaimNumber:      rec.ClaimNumber,
		DetectConfidence: detectConfidence,
		Record:           rec,
		CreatedAt:        time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO eob_records (id, document_name, claim_number, detect_confidence, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		row.ID.String(), row.DocumentName, row.ClaimNumber, row.DetectConfidence,
		string(blob), row.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, dbError(err, "insert eob record")
	}
	return row, nil
}

func (s *LocalStore) GetRecord(ctx context.Context, id uuid.UUID) (*StoredRecord, error) {
	var row StoredRecord
	var idStr, blob, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, document_name, claim_number, detect_confidence, record, created_at
		 FROM eob_records WHERE id = ?`, id.String(),
	).Scan(&idStr, &row.DocumentName, &row.ClaimNumber, &row.DetectConfidence, &blob, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, dbError(err, "select eob record")
	}

	row.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse record id: %w", err)
	}
	var rec eob.Record
	if err := json.Unmarshal([]byte(blob), &rec); err != nil {
		return nil, fmt.Errorf("decode record blob: %w", err)
	}
	row.Record = &rec
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		row.CreatedAt = t
	}
	return &row, nil
}

func (s *LocalStore) ListRecords(ctx context.Context, limit int) ([]*StoredRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_name, claim_number, detect_confidence, created_at
		 FROM eob_records ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, dbError(err, "list eob records")
	}
	defer rows.Close()

	var out []*StoredRecord
	for rows.Next() {
		var row StoredRecord
		var idStr, createdAt string
		if err := rows.Scan(&idStr, &row.DocumentName, &row.ClaimNumber, &row.DetectConfidence, &createdAt); err != nil {
			return nil, dbError(err, "scan eob record")
		}
		if row.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse record id: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			row.CreatedAt = t
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}

// compile-time interface check
var _ RecordRepository = (*LocalStore)(nil)
