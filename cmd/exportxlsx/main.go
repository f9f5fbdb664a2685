package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cellarscan/cellarscan/internal/common"
	"github.com/cellarscan/cellarscan/internal/recordstore"
)

// exportxlsx writes the cellar as an XLSX workbook.
func main() {
	_ = godotenv.Load()

	out := flag.String("out", "cellar.xlsx", "output workbook path")
	fromArg := flag.String("from", "", "start date YYYY-MM-DD (inclusive)")
	toArg := flag.String("to", "", "end date YYYY-MM-DD (inclusive)")
	flag.Parse()

	var from, to *time.Time
	if *fromArg != "" {
		d, err := time.Parse("2006-01-02", *fromArg)
		if err != nil {
			log.Fatalf("invalid -from: %v", err)
		}
		from = &d
	}
	if *toArg != "" {
		d, err := time.Parse("2006-01-02", *toArg)
		if err != nil {
			log.Fatalf("invalid -to: %v", err)
		}
		to = &d
	}

	cfg := common.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var (
		store recordstore.Store
		err   error
	)
	if cfg.Database.DSN != "" {
		store, err = recordstore.OpenPostgres(ctx, recordstore.PostgresConfig{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, nil)
	} else {
		store, err = recordstore.OpenSQLite(ctx, cfg.Database.SQLitePath, nil)
	}
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer store.Close()

	data, err := recordstore.NewExporter(store, nil).ExportXLSX(ctx, from, to)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("wrote %s (%d bytes)", *out, len(data))
}
