// Package profiler - records per-stage timings and custom metrics of
// enhancement runs and renders them as a report.
package profiler

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"time"
)

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	name      string
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// MetricTracker tracks statistics for a custom metric.
type MetricTracker struct {
	name  string
	sum   float64
	min   float64
	max   float64
	count int64
}

// OperationStats is a snapshot of one operation's timings.
type OperationStats struct {
	Name  string        `json:"name" yaml:"name"`
	Count int64         `json:"count" yaml:"count"`
	Total time.Duration `json:"total" yaml:"total"`
	Avg   time.Duration `json:"avg" yaml:"avg"`
	Min   time.Duration `json:"min" yaml:"min"`
	Max   time.Duration `json:"max" yaml:"max"`
}

// MetricStats is a snapshot of one custom metric.
type MetricStats struct {
	Name  string  `json:"name" yaml:"name"`
	Count int64   `json:"count" yaml:"count"`
	Avg   float64 `json:"avg" yaml:"avg"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
}

// Recorder collects operation timings and custom metrics. It is safe for
// concurrent use and satisfies contrast.Timer.
type Recorder struct {
	mu             sync.RWMutex
	startTime      time.Time
	operationTimes map[string]*TimeTracker
	customMetrics  map[string]*MetricTracker
}

// NewRecorder creates an empty recorder.
//
// @example
// rec := profiler.NewRecorder()
// stop := rec.StartOperation("decode")
// defer stop()
func NewRecorder() *Recorder {
	return &Recorder{
		startTime:      time.Now(),
		operationTimes: make(map[string]*TimeTracker),
		customMetrics:  make(map[string]*MetricTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (r *Recorder) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		r.RecordOperationTime(name, time.Since(start))
	}
}

// RecordOperationTime records one completed operation.
func (r *Recorder) RecordOperationTime(name string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracker, exists := r.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		r.operationTimes[name] = tracker
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// RecordMetric records a custom metric value.
//
// Arguments:
// - name: The name of the metric
// - value: The metric value to record
func (r *Recorder) RecordMetric(name string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracker, exists := r.customMetrics[name]
	if !exists {
		tracker = &MetricTracker{name: name, min: value, max: value}
		r.customMetrics[name] = tracker
	}

	tracker.sum += value
	tracker.count++
	if value < tracker.min {
		tracker.min = value
	}
	if value > tracker.max {
		tracker.max = value
	}
}

// Operations returns timing snapshots sorted by name.
func (r *Recorder) Operations() []OperationStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]OperationStats, 0, len(r.operationTimes))
	for _, t := range r.operationTimes {
		out = append(out, OperationStats{
			Name:  t.name,
			Count: t.count,
			Total: t.totalTime,
			Avg:   t.totalTime / time.Duration(t.count),
			Min:   t.minTime,
			Max:   t.maxTime,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Metrics returns custom metric snapshots sorted by name.
func (r *Recorder) Metrics() []MetricStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MetricStats, 0, len(r.customMetrics))
	for _, m := range r.customMetrics {
		out = append(out, MetricStats{
			Name:  m.name,
			Count: m.count,
			Avg:   m.sum / float64(m.count),
			Min:   m.min,
			Max:   m.max,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WriteReport renders operation timings, custom metrics and memory usage.
func (r *Recorder) WriteReport(w io.Writer) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fmt.Fprintf(w, "PROFILER REPORT - %s\n", time.Now().Format("15:04:05.000"))
	fmt.Fprintf(w, "Uptime: %v\n", time.Since(r.startTime).Truncate(time.Millisecond))

	if ops := r.Operations(); len(ops) > 0 {
		fmt.Fprintf(w, "\nOPERATION TIMINGS:\n")
		for _, op := range ops {
			fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
				op.Name, op.Avg.Truncate(time.Microsecond),
				op.Min.Truncate(time.Microsecond),
				op.Max.Truncate(time.Microsecond),
				op.Count)
		}
	}

	if metrics := r.Metrics(); len(metrics) > 0 {
		fmt.Fprintf(w, "\nCUSTOM METRICS:\n")
		for _, m := range metrics {
			fmt.Fprintf(w, "  %s: avg=%.2f, min=%.2f, max=%.2f, samples=%d\n",
				m.Name, m.Avg, m.Min, m.Max, m.Count)
		}
	}

	fmt.Fprintf(w, "\nMEMORY USAGE:\n")
	fmt.Fprintf(w, "  Alloc: %s\n", formatBytes(mem.Alloc))
	fmt.Fprintf(w, "  Total Alloc: %s\n", formatBytes(mem.TotalAlloc))
	fmt.Fprintf(w, "  Heap Objects: %d\n", mem.HeapObjects)
	fmt.Fprintf(w, "  GC Cycles: %d\n", mem.NumGC)
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
