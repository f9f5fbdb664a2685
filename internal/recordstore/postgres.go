package recordstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cellarscan/cellarscan/constants"
	"github.com/cellarscan/cellarscan/internal/common"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS cellar_records (
	id            UUID PRIMARY KEY,
	image_ref     TEXT NOT NULL,
	doc_type      TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL,
	status        TEXT NOT NULL,
	purchase_date DATE NOT NULL,
	fields_json   JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cellar_records_purchase_date ON cellar_records (purchase_date);
`

// PostgresConfig holds pool settings for the shared store.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// PostgresStore is the shared multi-node record store.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool and ensures the schema exists.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "cellarscan"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("successfully connected to database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func (s *PostgresStore) HealthCheck(ctx context.Context, timeout time.Duration) error {
	s.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Save(ctx context.Context, rec *CellarRecord) error {
	if err := ValidateFieldsJSON(rec.FieldsJSON); err != nil {
		return common.ParseError("validate fields", err)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cellar_records
		   (id, image_ref, doc_type, confidence, status, purchase_date, fields_json, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID,
		rec.ImageRef,
		string(rec.DocType),
		rec.Confidence,
		string(rec.Status),
		rec.PurchaseDate,
		rec.FieldsJSON,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return common.StoreError("insert record", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*CellarRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, image_ref, doc_type, confidence, status, purchase_date, fields_json, created_at
		   FROM cellar_records WHERE id = $1`, id)
	rec, err := scanPgRecord(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return rec, err
}

func (s *PostgresStore) List(ctx context.Context, from, to *time.Time) ([]*CellarRecord, error) {
	q := `SELECT id, image_ref, doc_type, confidence, status, purchase_date, fields_json, created_at
	        FROM cellar_records`
	var (
		conds []string
		args  []any
	)
	if from != nil {
		args = append(args, *from)
		conds = append(conds, fmt.Sprintf("purchase_date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, fmt.Sprintf("purchase_date <= $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY purchase_date, created_at"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []*CellarRecord
	for rows.Next() {
		rec, err := scanPgRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database connections gracefully.
func (s *PostgresStore) Close() error {
	s.logger.Info("closing database connections")
	s.pool.Close()
	return nil
}

func scanPgRecord(scan func(...any) error) (*CellarRecord, error) {
	var (
		rec             CellarRecord
		docType, status string
	)
	err := scan(&rec.ID, &rec.ImageRef, &docType, &rec.Confidence, &status,
		&rec.PurchaseDate, &rec.FieldsJSON, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.DocType = constants.DocumentType(docType)
	rec.Status = constants.StockStatus(status)
	return &rec, nil
}
