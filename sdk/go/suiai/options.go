package suiai

import (
	"log/slog"

	"SuiAI-SDK/pkg/journal"

	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	client     LedgerClient
	logger     *slog.Logger
	journal    journal.Sink
	registerer prometheus.Registerer
	decoders   map[uint8]Decoder
}

// Option customises an SDK instance.
type Option func(*options)

// WithLedgerClient uses client instead of dialing the configured network.
// The SDK does not close a client supplied this way.
func WithLedgerClient(client LedgerClient) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithJournal records every submission to sink. Journal failures are logged
// and never change the result of an operation.
func WithJournal(sink journal.Sink) Option {
	return func(o *options) {
		o.journal = sink
	}
}

// WithMetricsRegisterer registers submission metrics on reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithDecoder selects the inference output decoder for a model type.
func WithDecoder(modelType uint8, d Decoder) Option {
	return func(o *options) {
		if o.decoders == nil {
			o.decoders = make(map[uint8]Decoder)
		}
		o.decoders[modelType] = d
	}
}
