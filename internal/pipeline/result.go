package pipeline

import (
	"time"

	"github.com/cellarscan/cellarscan/constants"
	"github.com/cellarscan/cellarscan/internal/extract"
)

// Result is the outcome of one capture run. Exactly one of Label and
// Receipt is set when Type is LABEL or RECEIPT; both are nil for UNKNOWN.
type Result struct {
	ImageRef   string                 `json:"image_ref"`
	CacheKey   string                 `json:"cache_key"`
	CacheHit   bool                   `json:"cache_hit"`
	Text       string                 `json:"text"`
	Type       constants.DocumentType `json:"type"`
	Confidence float64                `json:"confidence"`
	Indicators []string               `json:"indicators"`
	Label      *extract.LabelFields   `json:"label,omitempty"`
	Receipt    *extract.ReceiptFields `json:"receipt,omitempty"`
	Duration   time.Duration          `json:"duration_ns"`
}
