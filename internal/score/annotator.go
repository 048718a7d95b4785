package score

import (
	"context"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/tillflow/tillflow/internal/model"
)

// Annotator batch-scores an items dimension.
type Annotator struct {
	estimator *Estimator
	now       func() time.Time
	progress  bool
}

// NewAnnotator creates an Annotator. With progress enabled a terminal
// progress bar tracks the batch.
func NewAnnotator(estimator *Estimator, progress bool) *Annotator {
	return &Annotator{
		estimator: estimator,
		progress:  progress,
		now:       time.Now,
	}
}

// ScoreItems grades every item and returns one score per item, in
// item order. Cancellation stops the loop early; items already graded
// are returned so a partial batch can still be persisted.
func (a *Annotator) ScoreItems(ctx context.Context, items []model.Item) []model.ItemScore {
	var bar *progressbar.ProgressBar
	if a.progress {
		bar = progressbar.Default(int64(len(items)), "scoring items")
	}

	scores := make([]model.ItemScore, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		grade := a.estimator.Estimate(ctx, item.ItemName, item.Category, item.SubCategory)
		scores = append(scores, model.ItemScore{
			ItemID:   item.ItemID,
			Grade:    grade,
			ScoredAt: a.now().UTC(),
		})

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return scores
}
