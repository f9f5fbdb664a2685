package cache

import "runtime"

// Limits are the ordered memory-pressure thresholds in bytes:
// Warn < Cleanup < Max.
type Limits struct {
	Warn    uint64 `json:"warn"`
	Cleanup uint64 `json:"cleanup"`
	Max     uint64 `json:"max"`
}

// MemoryStatus reports current process heap usage against the configured
// limits.
type MemoryStatus struct {
	HeapUsed     uint64 `json:"heap_used"`
	HeapTotal    uint64 `json:"heap_total"`
	Limits       Limits `json:"limits"`
	WithinLimits bool   `json:"within_limits"`
}

// Memory reads the live heap numbers for this process.
func (c *Cache) Memory() MemoryStatus {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return MemoryStatus{
		HeapUsed:     ms.HeapAlloc,
		HeapTotal:    ms.HeapSys,
		Limits:       c.cfg.Memory,
		WithinLimits: ms.HeapAlloc < c.cfg.Memory.Max,
	}
}
