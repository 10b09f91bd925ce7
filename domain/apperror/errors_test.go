package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"not found matches sentinel", NotFound("task %s", "t1"), ErrNotFound, true},
		{"wrapped invalid state", fmt.Errorf("complete: %w", InvalidState("already completed")), ErrInvalidState, true},
		{"kinds differ", InvalidArgument("bad"), ErrNotFound, false},
		{"plain error", errors.New("boom"), ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromRemote(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{"nil stays nil", nil, "", ""},
		{"service error text", errors.New("service error: not_found: confirmation for task t1"), KindNotFound, "confirmation for task t1"},
		{"invalid state text", errors.New("invalid_state: task t1 is completed"), KindInvalidState, "task t1 is completed"},
		{"unclassified", errors.New("nats: timeout"), KindInternal, "nats: timeout"},
		{"already typed", InvalidArgument("actualTime must be > 0"), KindInvalidArgument, "actualTime must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRemote(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("FromRemote(nil) = %v, want nil", got)
				}
				return
			}
			var e *Error
			if !errors.As(got, &e) {
				t.Fatalf("FromRemote() = %T, want *Error", got)
			}
			if e.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.wantKind)
			}
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(fmt.Errorf("wrap: %w", NotFound("x"))); got != KindNotFound {
		t.Errorf("KindOf() = %v, want %v", got, KindNotFound)
	}
	if got := KindOf(errors.New("x")); got != KindInternal {
		t.Errorf("KindOf() = %v, want %v", got, KindInternal)
	}
}
