package middleware

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/queries"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder receives one observation per dispatched message.
type Recorder interface {
	ObserveMessage(kind, key, outcome string, elapsed time.Duration)
}

// RejectionClassifier reports whether an error is an expected business
// rejection (validation, conflict) rather than a failure.
type RejectionClassifier func(err error) bool

func Metrics(r Recorder, rejected RejectionClassifier) CommandMiddleware {
	if r == nil {
		panic("middleware: recorder required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			r.ObserveMessage("command", cmd.Key(), outcome(err, rejected), time.Since(start))
			return res, err
		})
	}
}

func QueryMetrics(r Recorder, rejected RejectionClassifier) QueryMiddleware {
	if r == nil {
		panic("middleware: recorder required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, q)
			r.ObserveMessage("query", q.Key(), outcome(err, rejected), time.Since(start))
			return res, err
		})
	}
}

func outcome(err error, rejected RejectionClassifier) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled):
		return OutcomeRejected
	case rejected != nil && rejected(err):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
