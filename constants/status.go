package constants

// StockStatus is the canonical inventory status for cellar records.
type StockStatus string

const (
	StockStatusInStock  StockStatus = "IN_STOCK"
	StockStatusConsumed StockStatus = "CONSUMED"
)

// DefaultStockStatus is applied to every newly captured record.
const DefaultStockStatus = StockStatusInStock

// JobStatus is the lifecycle status for a capture job.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"  // waiting for a worker
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusDone    JobStatus = "DONE"    // pipeline completed
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
