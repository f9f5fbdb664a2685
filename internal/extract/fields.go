// Package extract pulls structured fields out of classified OCR text
// using ordered, best-effort pattern rules. Extraction is pure text work:
// it never performs I/O and never fails on malformed input. Any field it
// cannot confidently find is simply absent.
package extract

// LabelFields holds the fields read off a wine label. Nil means the field
// was not found; an empty string never stands in for unknown.
type LabelFields struct {
	Name           *string  `json:"name,omitempty"`
	Vintage        *int     `json:"vintage,omitempty"`
	Producer       *string  `json:"producer,omitempty"`
	Region         *string  `json:"region,omitempty"`
	Appellation    *string  `json:"appellation,omitempty"`
	Variety        *string  `json:"variety,omitempty"`
	Alcohol        *float64 `json:"alcohol,omitempty"`
	Volume         *string  `json:"volume,omitempty"`
	Classification *string  `json:"classification,omitempty"`
}

// Empty reports whether no field was extracted.
func (f LabelFields) Empty() bool {
	return f == LabelFields{}
}

// ReceiptItem is one purchased line item.
type ReceiptItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Vintage  *int    `json:"vintage,omitempty"`
}

// ReceiptFields holds the fields parsed from a purchase receipt.
type ReceiptFields struct {
	Store         *string       `json:"store,omitempty"`
	Date          *string       `json:"date,omitempty"` // YYYY-MM-DD
	Time          *string       `json:"time,omitempty"` // HH:MM or HH:MM:SS
	Items         []ReceiptItem `json:"items"`
	Subtotal      *float64      `json:"subtotal,omitempty"`
	Tax           *float64      `json:"tax,omitempty"`
	Total         *float64      `json:"total,omitempty"`
	PaymentMethod *string       `json:"payment_method,omitempty"`
}

func strPtr(s string) *string     { return &s }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
