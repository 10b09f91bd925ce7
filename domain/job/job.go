// Package job defines the leaderboard recompute jobs run by the worker pool.
package job

import (
	"errors"
	"fmt"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

// Kind selects what a job recomputes.
type Kind string

const (
	KindRecomputeUser  Kind = "recompute_user"
	KindRecomputeGroup Kind = "recompute_group"
)

var (
	// ErrQueueFull indicates the in-memory queue has no free slot.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueUnavailable indicates the queue is not connected.
	ErrQueueUnavailable = errors.New("queue unavailable")
	// ErrInvalidJob indicates a job without a target.
	ErrInvalidJob = errors.New("invalid job")
)

var newID = mustGenerator()

func mustGenerator() func() string {
	gen, err := nanoid.Standard(12)
	if err != nil {
		panic(fmt.Sprintf("nanoid generator: %v", err))
	}
	return gen
}

// Job asks the worker pool to rebuild rankings.
type Job struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	UserID    string    `json:"user_id,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	Reason    string    `json:"reason"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"created_at"`
}

// RecomputeUser creates a job rebuilding every group of userID.
func RecomputeUser(userID, reason string) *Job {
	return &Job{ID: newID(), Kind: KindRecomputeUser, UserID: userID, Reason: reason, CreatedAt: time.Now()}
}

// RecomputeGroup creates a job rebuilding one group.
func RecomputeGroup(groupID, reason string) *Job {
	return &Job{ID: newID(), Kind: KindRecomputeGroup, GroupID: groupID, Reason: reason, CreatedAt: time.Now()}
}

// Validate reports ErrInvalidJob when the target for the kind is missing.
func (j *Job) Validate() error {
	switch j.Kind {
	case KindRecomputeUser:
		if j.UserID == "" {
			return fmt.Errorf("%w: user id required", ErrInvalidJob)
		}
	case KindRecomputeGroup:
		if j.GroupID == "" {
			return fmt.Errorf("%w: group id required", ErrInvalidJob)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, j.Kind)
	}
	return nil
}

// Target returns the user or group id the job addresses.
func (j *Job) Target() string {
	if j.Kind == KindRecomputeGroup {
		return j.GroupID
	}
	return j.UserID
}
