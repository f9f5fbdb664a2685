package recordstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cellarscan/cellarscan/constants"
	"github.com/cellarscan/cellarscan/internal/common"
	"github.com/cellarscan/cellarscan/internal/pipeline"
)

// CellarRecord is one captured document. FieldsJSON holds the extracted
// label or receipt fields verbatim; the relational columns carry what the
// daemon queries by.
type CellarRecord struct {
	ID           uuid.UUID
	ImageRef     string
	DocType      constants.DocumentType
	Confidence   float64
	Status       constants.StockStatus
	PurchaseDate time.Time // date-only, UTC
	FieldsJSON   []byte
	CreatedAt    time.Time
}

// Store persists capture results.
type Store interface {
	Save(ctx context.Context, rec *CellarRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*CellarRecord, error)
	List(ctx context.Context, from, to *time.Time) ([]*CellarRecord, error)
	Close() error
}

// FromResult builds a record from a finished capture run. New records
// enter the cellar as IN_STOCK; the purchase date is the receipt date
// when one was extracted, otherwise today.
func FromResult(res pipeline.Result) (*CellarRecord, error) {
	var (
		fields any
		raw    []byte
		err    error
	)
	switch res.Type {
	case constants.DocTypeLabel:
		fields = res.Label
	case constants.DocTypeReceipt:
		fields = res.Receipt
	default:
		fields = struct{}{}
	}
	raw, err = json.Marshal(fields)
	if err != nil {
		return nil, common.ParseError("marshal fields", err)
	}

	now := time.Now().UTC()
	rec := &CellarRecord{
		ID:           uuid.New(),
		ImageRef:     res.ImageRef,
		DocType:      res.Type,
		Confidence:   res.Confidence,
		Status:       constants.DefaultStockStatus,
		PurchaseDate: dateOnly(now),
		FieldsJSON:   raw,
		CreatedAt:    now,
	}
	if res.Receipt != nil && res.Receipt.Date != nil {
		if d, perr := time.Parse("2006-01-02", *res.Receipt.Date); perr == nil {
			rec.PurchaseDate = d.UTC()
		}
	}
	return rec, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
