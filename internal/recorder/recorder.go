package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Result statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// BatchRun is the persisted history of one batch invocation.
type BatchRun struct {
	ID         uuid.UUID
	Provider   string
	Watchlist  string
	StartedAt  time.Time
	FinishedAt time.Time
	RangeStart time.Time
	RangeEnd   time.Time
	Investment decimal.Decimal
	Warnings   int
	Results    []BatchResult
}

// BatchResult is one watchlist entry of a run. Successes precede failures,
// each in watchlist order.
type BatchResult struct {
	Symbol      string
	Comment     string
	Status      string
	Reason      string
	TotalReturn float64
	Volatility  float64
	MaxDrawdown float64
	EndingValue decimal.Decimal
}

// Succeeded counts results with StatusOK.
func (r *BatchRun) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusOK {
			n++
		}
	}
	return n
}

// Recorder persists batch run history.
type Recorder interface {
	RecordBatch(ctx context.Context, run *BatchRun) error
	Close() error
}
