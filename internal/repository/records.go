package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/eob"
)

// StoredRecord is one persisted analysis result. The claim itself is stored
// as an opaque JSON blob attached to its parent document row; this layer
// defines only the blob's shape (eob.Record), not its internals.
type StoredRecord struct {
	ID               uuid.UUID   `json:"id"`
	DocumentName     string      `json:"documentName"`
	ClaimNumber      string      `json:"claimNumber"`
	DetectConfidence int         `json:"detectConfidence"`
	Record           *eob.Record `json:"record,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// RecordRepository persists and retrieves analyzed claims.
type RecordRepository interface {
	SaveRecord(ctx context.Context, documentName string, detectConfidence int, rec *eob.Record) (*StoredRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*StoredRecord, error)
	ListRecords(ctx context.Context, limit int) ([]*StoredRecord, error)
}

type recordRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewRecordRepository(pool *pgxpool.Pool, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{pool: pool, logger: logger}
}

func (r *recordRepository) SaveRecord(ctx context.Context, documentName string, detectConfidence int, rec *eob.Record) (*StoredRecord, error) {
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
	}

	const q = `
		INSERT INTO eob_records (id, document_name, claim_number, detect_confidence, record)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	if err := r.pool.QueryRow(ctx, q,
		row.ID, row.DocumentName, row.ClaimNumber, row.DetectConfidence, blob,
	).Scan(&row.CreatedAt); err != nil {
		r.logger.Error("failed to save record", "claim_number", rec.ClaimNumber, "error", err)
		return nil, dbError(err, "insert eob record")
	}
	return row, nil
}

func (r *recordRepository) GetRecord(ctx context.Context, id uuid.UUID) (*StoredRecord, error) {
	const q = `
		SELECT id, document_name, claim_number, detect_confidence, record, created_at
		FROM eob_records WHERE id = $1`

	var row StoredRecord
	var blob []byte
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&row.ID, &row.DocumentName, &row.ClaimNumber, &row.DetectConfidence, &blob, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get record", "id", id, "error", err)
		return nil, dbError(err, "select eob record")
	}

	var rec eob.Record
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, fmt.Errorf("decode record blob: %w", err)
	}
	row.Record = &rec
	return &row, nil
}

func (r *recordRepository) ListRecords(ctx context.Context, limit int) ([]*StoredRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
		SELECT id, document_name, claim_number, detect_confidence, created_at
		FROM eob_records ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		r.logger.Error("failed to list records", "error", err)
		return nil, dbError(err, "list eob records")
	}
	defer rows.Close()

	var out []*StoredRecord
	for rows.Next() {
		var row StoredRecord
		if err := rows.Scan(&row.ID, &row.DocumentName, &row.ClaimNumber, &row.DetectConfidence, &row.CreatedAt); err != nil {
			return nil, dbError(err, "scan eob record")
		}
		out = append(out, &row)
	}
	return out, rows.Err()
}

// dbError tags storage failures so the transport layer can map them without
// knowing the driver.
func dbError(err error, msg string) error {
	return fmt.Errorf("%s: %w: %v", msg, common.ErrDatabase, err)
}
