package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cellarscan/cellarscan/internal/common"
	"github.com/cellarscan/cellarscan/internal/ocr"
	"github.com/cellarscan/cellarscan/internal/pipeline"
)

// scanfile runs the capture pipeline once for a single image and prints
// the result as JSON.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "scanfile <image-path-or-url>")
		os.Exit(2)
	}
	imageRef := os.Args[1]

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	vision := ocr.NewVisionClient(ocr.Config{
		BaseURL:  cfg.OCR.BaseURL,
		APIKey:   cfg.OCR.APIKey,
		Model:    cfg.OCR.Model,
		Timeout:  cfg.OCR.Timeout,
		MaxBytes: cfg.OCR.MaxBytes,
	}, logger)

	// One-shot runs skip the cache; there is nothing to reuse.
	proc := pipeline.NewProcessor(logger, nil, vision, nil, nil, nil)
	res, err := proc.Process(ctx, imageRef)
	if err != nil {
		logger.Error("capture failed", "image_ref", imageRef, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
}
