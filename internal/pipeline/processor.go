package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/cellarscan/cellarscan/constants"
	"github.com/cellarscan/cellarscan/internal/cache"
	"github.com/cellarscan/cellarscan/internal/classify"
	"github.com/cellarscan/cellarscan/internal/extract"
	"github.com/cellarscan/cellarscan/internal/ocr"
)

// Processor coordinates cache lookup, OCR, classification, and field
// extraction for a single image reference.
type Processor struct {
	Logger     *slog.Logger
	Cache      *cache.Cache
	OCR        ocr.TextExtractor
	Classifier *classify.Classifier
	Labels     *extract.LabelExtractor
	Receipts   *extract.ReceiptExtractor
	TTL        time.Duration // 0 uses the cache default
}

func NewProcessor(
	logger *slog.Logger,
	c *cache.Cache,
	tx ocr.TextExtractor,
	cls *classify.Classifier,
	labels *extract.LabelExtractor,
	receipts *extract.ReceiptExtractor,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cls == nil {
		cls = classify.New(classify.DefaultPolicy(), logger)
	}
	if labels == nil {
		labels = extract.NewLabelExtractor(logger)
	}
	if receipts == nil {
		receipts = extract.NewReceiptExtractor(logger)
	}
	return &Processor{
		Logger:     logger,
		Cache:      c,
		OCR:        tx,
		Classifier: cls,
		Labels:     labels,
		Receipts:   receipts,
	}
}

// Process runs the full capture flow. OCR failures abort the run; an OCR
// result that classifies as UNKNOWN is not an error.
func (p *Processor) Process(ctx context.Context, imageRef string) (Result, error) {
	start := time.Now()
	key := cache.Key(imageRef)

	res := Result{ImageRef: imageRef, CacheKey: key}

	text, hit := "", false
	if p.Cache != nil {
		text, hit = p.Cache.Get(key)
	}
	if !hit {
		ocrRes, err := p.OCR.Recognize(ctx, imageRef)
		if err != nil {
			p.Logger.Error("pipeline.ocr.failed", "image_ref", imageRef, "err", err)
			return res, err
		}
		text = ocrRes.Text
		if p.Cache != nil {
			p.Cache.Set(key, text, p.TTL)
		}
	}
	res.CacheHit = hit
	res.Text = text

	cls := p.Classifier.Classify(text)
	res.Type = cls.Type
	res.Confidence = cls.Confidence
	res.Indicators = cls.Indicators

	switch cls.Type {
	case constants.DocTypeLabel:
		fields := p.Labels.Extract(text)
		res.Label = &fields
	case constants.DocTypeReceipt:
		fields := p.Receipts.Extract(text)
		res.Receipt = &fields
	}

	res.Duration = time.Since(start)
	p.Logger.Info("pipeline.process.ok",
		"image_ref", imageRef,
		"cache_hit", hit,
		"type", string(cls.Type),
		"confidence", cls.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
