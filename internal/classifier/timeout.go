package classifier

import (
	"context"
	"time"

	"github.com/dtroode/heartcare-server/internal/model"
)

type timeboxed struct {
	next    model.Classifier
	timeout time.Duration
}

// WithTimeout bounds every Classify call on next to d. A non-positive d
// returns next unchanged.
func WithTimeout(next model.Classifier, d time.Duration) model.Classifier {
	if d <= 0 {
		return next
	}
	return timeboxed{next: next, timeout: d}
}

func (t timeboxed) Classify(ctx context.Context, image []byte) (model.Label, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return t.next.Classify(ctx, image)
}
