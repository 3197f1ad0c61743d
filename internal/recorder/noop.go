package recorder

import "context"

// NoopRecorder discards every run; used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBatch(context.Context, *BatchRun) error { return nil }
func (n *NoopRecorder) Close() error                                 { return nil }
