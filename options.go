package tantivy

import (
	"log/slog"

	"github.com/drusellers/tantivy/segment"
)

type options struct {
	codec   segment.Codec
	logger  *Logger
	metrics MetricsCollector
}

// Option configures index open/create behavior.
type Option func(*options)

// WithCodec selects the block compression for new segments. Existing
// segments keep the codec they were written with.
func WithCodec(c segment.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithLogger configures structured logging for index operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets
// it. Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:   segment.CodecLZ4,
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
