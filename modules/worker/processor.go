package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/lockin/domain/apperror"
	"github.com/example/lockin/domain/job"
	"github.com/example/lockin/modules/leaderboard"
)

// Processor runs recompute jobs against the leaderboard.
type Processor struct {
	leaderboard leaderboard.RecomputerPort
}

// NewProcessor creates a new job processor.
func NewProcessor(lb leaderboard.RecomputerPort) *Processor {
	return &Processor{leaderboard: lb}
}

// Process runs one job.
func (p *Processor) Process(ctx context.Context, j *job.Job) error {
	if err := j.Validate(); err != nil {
		return err
	}
	switch j.Kind {
	case job.KindRecomputeUser:
		return p.leaderboard.RecomputeForUser(ctx, j.UserID)
	case job.KindRecomputeGroup:
		return p.leaderboard.RecomputeGroup(ctx, j.GroupID)
	default:
		return fmt.Errorf("%w: unknown kind %q", job.ErrInvalidJob, j.Kind)
	}
}

// Retryable reports whether a failed job may succeed on a later attempt.
func Retryable(err error) bool {
	if errors.Is(err, job.ErrInvalidJob) || errors.Is(err, apperror.ErrInvalidArgument) {
		return false
	}
	return true
}
