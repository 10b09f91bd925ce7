package job

import (
	"errors"
	"testing"
)

func TestJob_Validate(t *testing.T) {
	tests := []struct {
		name    string
		job     *Job
		wantErr bool
	}{
		{"user job", RecomputeUser("u1", "task completed"), false},
		{"group job", RecomputeGroup("g1", "member added"), false},
		{"user job without user", &Job{Kind: KindRecomputeUser}, true},
		{"group job without group", &Job{Kind: KindRecomputeGroup, UserID: "u1"}, true},
		{"unknown kind", &Job{Kind: "shuffle", UserID: "u1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidJob) {
				t.Errorf("expected ErrInvalidJob, got %v", err)
			}
		})
	}
}

func TestJob_IDs(t *testing.T) {
	a := RecomputeUser("u1", "")
	b := RecomputeUser("u1", "")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if len(a.ID) != 12 {
		t.Errorf("expected 12 character id, got %q", a.ID)
	}
	if got := RecomputeGroup("g1", "").Target(); got != "g1" {
		t.Errorf("Target() = %q, want g1", got)
	}
}
