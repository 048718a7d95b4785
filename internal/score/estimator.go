package score

import (
	"context"
	"log/slog"
	"time"

	"github.com/tillflow/tillflow/internal/common"
)

// Estimator wraps a Client with the disclosed fallback contract: one
// bounded retry after a short delay, then the default grade. Estimate
// never returns an error; the annotator must not fail the batch over a
// single item.
type Estimator struct {
	client     Client
	retryDelay time.Duration
}

// NewEstimator creates an Estimator around the given client.
func NewEstimator(client Client, retryDelay time.Duration) *Estimator {
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &Estimator{client: client, retryDelay: retryDelay}
}

// Estimate returns the grade for one item, or DefaultGrade when the
// service fails twice or the context ends.
func (e *Estimator) Estimate(ctx context.Context, itemName, category, subCategory string) string {
	var grade string
	err := common.WithRetry(ctx, func() error {
		var scoreErr error
		grade, scoreErr = e.client.Score(ctx, itemName, category, subCategory)
		return scoreErr
	}, common.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: e.retryDelay,
		MaxDelay:     e.retryDelay,
	})
	if err != nil {
		slog.Warn("scoring failed, using default grade",
			"item_name", itemName,
			"grade", DefaultGrade,
			"error", err)
		return DefaultGrade
	}
	return grade
}
