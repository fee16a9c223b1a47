package tantivy

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational
// metrics. Implement it to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordAddDocument is called after each buffered document add.
	RecordAddDocument(duration time.Duration, err error)

	// RecordCommit is called after each commit. numDocs is the number
	// of documents flushed into the new segment, zero when the commit
	// only applied deletes.
	RecordCommit(numDocs uint32, duration time.Duration, err error)

	// RecordSearch is called after each search operation.
	RecordSearch(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAddDocument(time.Duration, error)    {}
func (NoopMetricsCollector) RecordCommit(uint32, time.Duration, error) {}
func (NoopMetricsCollector) RecordSearch(time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external
// dependencies.
type BasicMetricsCollector struct {
	AddCount         atomic.Int64
	AddErrors        atomic.Int64
	CommitCount      atomic.Int64
	CommitErrors     atomic.Int64
	CommitDocs       atomic.Int64
	CommitTotalNanos atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
}

// RecordAddDocument implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAddDocument(_ time.Duration, err error) {
	b.AddCount.Add(1)
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(numDocs uint32, duration time.Duration, err error) {
	b.CommitCount.Add(1)
	b.CommitDocs.Add(int64(numDocs))
	b.CommitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CommitErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:       b.AddCount.Load(),
		AddErrors:      b.AddErrors.Load(),
		CommitCount:    b.CommitCount.Load(),
		CommitErrors:   b.CommitErrors.Load(),
		CommitDocs:     b.CommitDocs.Load(),
		CommitAvgNanos: avgNanos(b.CommitTotalNanos.Load(), b.CommitCount.Load()),
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchAvgNanos: avgNanos(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount       int64
	AddErrors      int64
	CommitCount    int64
	CommitErrors   int64
	CommitDocs     int64
	CommitAvgNanos int64
	SearchCount    int64
	SearchErrors   int64
	SearchAvgNanos int64
}
