package observability

import (
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthStats aggregates process and request metrics for the health endpoint.
type HealthStats struct {
	UptimeSeconds   float64 `json:"uptime_seconds"`
	AllocMemMb      uint64  `json:"alloc_mem_mb"`
	NumGC           uint32  `json:"num_gc"`
	NumGoroutine    int     `json:"num_goroutine"`
	ProcessRSSMb    uint64  `json:"process_rss_mb"`
	ProcessCPUPct   float64 `json:"process_cpu_pct"`
	RequestsServed  uint64  `json:"requests_served"`
	RequestFailures uint64  `json:"request_failures"`
}

// Monitor collects runtime metrics for the running server process.
type Monitor struct {
	startedAt time.Time
	proc      *process.Process

	requests uint64
	failures uint64
}

func NewMonitor() *Monitor {
	m := &Monitor{startedAt: time.Now()}
	// Process lookup can fail on exotic platforms, stats degrade gracefully.
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		m.proc = p
	}
	return m
}

func (m *Monitor) IncrRequests() {
	atomic.AddUint64(&m.requests, 1)
}

func (m *Monitor) IncrFailures() {
	atomic.AddUint64(&m.failures, 1)
}

// Snapshot returns the current metrics. Safe for concurrent use.
func (m *Monitor) Snapshot() HealthStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := HealthStats{
		UptimeSeconds:   time.Since(m.startedAt).Seconds(),
		AllocMemMb:      mem.Alloc / 1024 / 1024,
		NumGC:           mem.NumGC,
		NumGoroutine:    runtime.NumGoroutine(),
		RequestsServed:  atomic.LoadUint64(&m.requests),
		RequestFailures: atomic.LoadUint64(&m.failures),
	}

	if m.proc != nil {
		if info, err := m.proc.MemoryInfo(); err == nil && info != nil {
			stats.ProcessRSSMb = info.RSS / 1024 / 1024
		}
		if pct, err := m.proc.CPUPercent(); err == nil {
			stats.ProcessCPUPct = pct
		}
	}
	return stats
}
