package collector

import (
	"context"
	"errors"
	"fmt"
	"log"

	"StockLens/internal/model"
	"StockLens/internal/symbol"
)

var (
	// ErrDataService matches every failure reported by a market data provider.
	ErrDataService = errors.New("data service error")
	// ErrUnsupported is returned for operations a provider cannot serve.
	ErrUnsupported = errors.New("operation not supported by provider")
)

// DataServiceError wraps a provider failure with the operation that produced it.
type DataServiceError struct {
	Provider string
	Op       string
	Err      error
}

func (e *DataServiceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *DataServiceError) Unwrap() error { return e.Err }

func (e *DataServiceError) Is(target error) bool { return target == ErrDataService }

func serviceError(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var dse *DataServiceError
	if errors.As(err, &dse) {
		return err
	}
	return &DataServiceError{Provider: provider, Op: op, Err: err}
}

// Client opens sessions against a market data provider.
type Client interface {
	Name() string
	Login(ctx context.Context) (Session, error)
}

// Session is an authenticated handle to a provider. It is not safe for
// concurrent use.
type Session interface {
	QueryDaily(ctx context.Context, sym symbol.Symbol, rng model.DateRange, freq model.Frequency) ([]model.DailyRecord, error)
	QueryInfo(ctx context.Context, sym symbol.Symbol) (*model.CompanyInfo, error)
	QueryFinance(ctx context.Context, sym symbol.Symbol, year, quarter int) (*model.FinancialRecord, error)
	QueryIndexConstituents(ctx context.Context, index model.Index) ([]model.Constituent, error)
	QueryRealtime(ctx context.Context, syms []symbol.Symbol) ([]model.Quote, error)
	Logout(ctx context.Context) error
}

// WithSession logs in once, runs fn and always logs out, also when fn fails.
// A failed login is returned as a *DataServiceError; a failed logout is only logged.
func WithSession(ctx context.Context, client Client, fn func(Session) error) error {
	sess, err := client.Login(ctx)
	if err != nil {
		return serviceError(client.Name(), "login", err)
	}
	log.Printf("[INFO] %s: session opened", client.Name())
	defer func() {
		// Logout must run even when ctx was cancelled mid-batch.
		if lerr := sess.Logout(context.WithoutCancel(ctx)); lerr != nil {
			log.Printf("[WARN] %s: logout failed: %v", client.Name(), lerr)
			return
		}
		log.Printf("[INFO] %s: session closed", client.Name())
	}()
	return fn(sess)
}
