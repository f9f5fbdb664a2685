package ocr

import (
	"context"
	"time"
)

// TextExtractor turns an image reference (local path or remote URL) into
// raw text.
type TextExtractor interface {
	Recognize(ctx context.Context, imageRef string) (ExtractionResult, error)
}

type ExtractionResult struct {
	Text     string
	Model    string
	Duration time.Duration
	Warnings []string
}
