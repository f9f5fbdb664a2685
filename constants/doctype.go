package constants

// DocumentType is the canonical document kind assigned by classification.
type DocumentType string

// Stable values (store these exact strings in records).
const (
	DocTypeLabel   DocumentType = "LABEL"
	DocTypeReceipt DocumentType = "RECEIPT"
	DocTypeUnknown DocumentType = "UNKNOWN"
)
