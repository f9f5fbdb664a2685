package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cellarscan/cellarscan/internal/extract"
)

// Exporter produces XLSX workbooks from the record store.
type Exporter struct {
	store  Store
	logger *slog.Logger
}

func NewExporter(store Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: store, logger: logger}
}

// ExportXLSX returns an XLSX workbook (as bytes) for the given date
// window. If only from is provided -> from..today (inclusive). If only to
// is provided -> beginning..to (inclusive). If neither -> all records.
func (e *Exporter) ExportXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := dateOnly(from.UTC())
		fromDate = &f
	}
	if to != nil {
		t := dateOnly(to.UTC())
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		t := dateOnly(time.Now().UTC())
		toDate = &t
	}

	recs, err := e.store.List(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Cellar"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Purchase Date",
		"Type",
		"Wine / Store",
		"Vintage",
		"Region",
		"Total",
		"Status",
		"Confidence",
		"Image Ref",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		title, vintage, region, total := summarize(r)

		write(1, r.PurchaseDate.Format("2006-01-02"))
		write(2, string(r.DocType))
		write(3, title)
		if vintage != nil {
			write(4, *vintage)
		}
		write(5, region)
		if total != nil {
			write(6, *total)
		}
		write(7, string(r.Status))
		write(8, r.Confidence)
		write(9, r.ImageRef)
		row++
	}

	e.logger.Info("export.xlsx.ok",
		"records", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// summarize pulls the headline columns back out of FieldsJSON. Both
// payload shapes decode into the same struct; absent fields stay nil.
func summarize(r *CellarRecord) (title string, vintage *int, region string, total *float64) {
	var fields struct {
		extract.LabelFields
		Store *string  `json:"store"`
		Total *float64 `json:"total"`
	}
	if err := json.Unmarshal(r.FieldsJSON, &fields); err != nil {
		return "", nil, "", nil
	}
	if fields.Name != nil {
		title = *fields.Name
	} else if fields.Store != nil {
		title = *fields.Store
	}
	if fields.Region != nil {
		region = *fields.Region
	}
	return title, fields.Vintage, region, fields.Total
}
