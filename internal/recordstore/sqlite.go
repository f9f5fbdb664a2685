package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cellarscan/cellarscan/constants"
	"github.com/cellarscan/cellarscan/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cellar_records (
	id            TEXT PRIMARY KEY,
	image_ref     TEXT NOT NULL,
	doc_type      TEXT NOT NULL,
	confidence    REAL NOT NULL,
	status        TEXT NOT NULL,
	purchase_date TEXT NOT NULL,
	fields_json   TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cellar_records_purchase_date ON cellar_records (purchase_date);
`

// SQLiteStore is the default single-node record store.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (and if needed creates) the store at path. ":memory:"
// gives an ephemeral store for tests.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite is single-writer; more connections just contend.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	logger.Info("recordstore.sqlite.open", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *CellarRecord) error {
	if err := ValidateFieldsJSON(rec.FieldsJSON); err != nil {
		return common.ParseError("validate fields", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cellar_records
		   (id, image_ref, doc_type, confidence, status, purchase_date, fields_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(),
		rec.ImageRef,
		string(rec.DocType),
		rec.Confidence,
		string(rec.Status),
		rec.PurchaseDate.Format("2006-01-02"),
		string(rec.FieldsJSON),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return common.StoreError("insert record", err)
	}
	s.logger.Debug("recordstore.save", "id", rec.ID, "doc_type", string(rec.DocType))
	return nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id uuid.UUID) (*CellarRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, image_ref, doc_type, confidence, status, purchase_date, fields_json, created_at
		   FROM cellar_records WHERE id = ?`, id.String())
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return rec, err
}

// List returns records in purchase-date order, optionally bounded by an
// inclusive date window.
func (s *SQLiteStore) List(ctx context.Context, from, to *time.Time) ([]*CellarRecord, error) {
	q := `SELECT id, image_ref, doc_type, confidence, status, purchase_date, fields_json, created_at
	        FROM cellar_records`
	var (
		conds []string
		args  []any
	)
	if from != nil {
		conds = append(conds, "purchase_date >= ?")
		args = append(args, from.Format("2006-01-02"))
	}
	if to != nil {
		conds = append(conds, "purchase_date <= ?")
		args = append(args, to.Format("2006-01-02"))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY purchase_date, created_at"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []*CellarRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRecord(scan func(...any) error) (*CellarRecord, error) {
	var (
		rec                        CellarRecord
		id, docType, status, pdate string
		createdAt, fieldsJSON      string
	)
	if err := scan(&id, &rec.ImageRef, &docType, &rec.Confidence, &status, &pdate, &fieldsJSON, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse record id: %w", err)
	}
	rec.ID = parsed
	rec.DocType = constants.DocumentType(docType)
	rec.Status = constants.StockStatus(status)
	rec.FieldsJSON = []byte(fieldsJSON)
	if rec.PurchaseDate, err = time.Parse("2006-01-02", pdate); err != nil {
		return nil, fmt.Errorf("parse purchase date: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created at: %w", err)
	}
	return &rec, nil
}
