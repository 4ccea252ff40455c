package observability

import (
	"strconv"
	"sync"
	"time"
)

// maxSeries caps the distinct request and error keys; further keys are
// folded into overflowPath.
const (
	maxSeries    = 1000
	overflowPath = "<other>"
)

// Metrics provides basic in-memory counters keyed by route pattern.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	requestMillis map[string]int64
	errorCount    map[string]int64
	eventCount    map[string]int64
	started       time.Time
}

// Snapshot is a point in time copy of the counters.
type Snapshot struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	Requests      map[string]int64 `json:"requests"`
	RequestMillis map[string]int64 `json:"request_millis"`
	Errors        map[string]int64 `json:"errors"`
	Events        map[string]int64 `json:"events"`
	TotalRequests int64            `json:"total_requests"`
	TotalErrors   int64            `json:"total_errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		requestMillis: make(map[string]int64),
		errorCount:    make(map[string]int64),
		eventCount:    make(map[string]int64),
		started:       time.Now(),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pathKey(path, method, status)
	if bounded(m.requestCount, key) {
		key = pathKey(overflowPath, method, status)
	}
	m.requestCount[key]++
	m.requestMillis[key] += duration.Milliseconds()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := path + "|" + method + "|" + code
	if bounded(m.errorCount, key) {
		key = overflowPath + "|" + method + "|" + code
	}
	m.errorCount[key]++
}

// RecordEvent counts a published domain event.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCount[eventType]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Requests:      copyCounts(m.requestCount),
		RequestMillis: copyCounts(m.requestMillis),
		Errors:        copyCounts(m.errorCount),
		Events:        copyCounts(m.eventCount),
	}
	for _, n := range m.requestCount {
		snap.TotalRequests += n
	}
	for _, n := range m.errorCount {
		snap.TotalErrors += n
	}
	return snap
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// bounded reports whether key is new and the series limit is reached.
func bounded(counts map[string]int64, key string) bool {
	if _, ok := counts[key]; ok {
		return false
	}
	return len(counts) >= maxSeries
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
