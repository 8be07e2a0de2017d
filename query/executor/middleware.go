package executor

import (
	"context"
	"time"

	"github.com/satishbabariya/dwq/internal/debug"
	"github.com/satishbabariya/dwq/query/result"
)

// QueryEvent represents a query execution event
type QueryEvent struct {
	Query    string
	Args     []any
	Rows     int
	Duration time.Duration
	Error    error
	Start    time.Time
	End      time.Time
}

// Middleware is a function that intercepts queries
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

type chain struct {
	driver      Driver
	middlewares []Middleware
}

// Chain wraps d so every query passes through the middlewares in order
func Chain(d Driver, middlewares ...Middleware) Driver {
	if len(middlewares) == 0 {
		return d
	}
	return &chain{driver: d, middlewares: middlewares}
}

func (c *chain) Query(ctx context.Context, sql string, args ...any) (*result.Table, error) {
	event := &QueryEvent{
		Query: sql,
		Args:  args,
		Start: time.Now(),
	}

	var t *result.Table
	var next func() error
	index := 0

	next = func() error {
		if index >= len(c.middlewares) {
			// end of the chain
			var err error
			t, err = c.driver.Query(ctx, sql, args...)
			event.End = time.Now()
			event.Duration = event.End.Sub(event.Start)
			event.Error = err
			event.Rows = t.Len()
			return err
		}

		middleware := c.middlewares[index]
		index++
		return middleware(ctx, event, next)
	}

	if err := next(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoggingMiddleware logs every statement to the debug logger
func LoggingMiddleware() Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		debug.Debug("Executing query", "sql", event.Query, "args", len(event.Args))
		err := next()
		if err != nil {
			debug.Debug("Query failed", "error", err, "duration", event.Duration)
		} else {
			debug.Debug("Query completed", "rows", event.Rows, "duration", event.Duration)
		}
		return err
	}
}

// ReportMiddleware hands every finished statement to report, failed ones
// included. The event carries the row count, duration and error.
func ReportMiddleware(report func(event QueryEvent)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		report(*event)
		return err
	}
}
