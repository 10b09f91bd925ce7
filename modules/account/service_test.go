package account

import (
	"context"
	"errors"
	"testing"

	domain "github.com/example/lockin/domain/account"
	"github.com/example/lockin/domain/apperror"
	"github.com/example/lockin/storage"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Account{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close(db) })
	return db
}

func TestService_IncrementCompleted(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(setupTestDB(t)))

	if err := svc.IncrementCompleted(ctx, "u1", 75); err != nil {
		t.Fatalf("IncrementCompleted() error = %v", err)
	}
	if err := svc.IncrementCompleted(ctx, "u1", 30); err != nil {
		t.Fatalf("IncrementCompleted() error = %v", err)
	}

	acc, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if acc.TasksCompleted != 2 {
		t.Errorf("TasksCompleted = %d, want 2", acc.TasksCompleted)
	}
	if acc.MinutesCompleted != 105 {
		t.Errorf("MinutesCompleted = %d, want 105", acc.MinutesCompleted)
	}
	if acc.ConfirmedTasksCompleted != 0 || acc.ConfirmedMinutesCompleted != 0 {
		t.Errorf("confirmed counters changed: %+v", acc)
	}
}

func TestService_IncrementConfirmed(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(setupTestDB(t)))

	if _, err := svc.Ensure(ctx, "u2", "Bea"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if err := svc.IncrementConfirmed(ctx, "u2", 40); err != nil {
		t.Fatalf("IncrementConfirmed() error = %v", err)
	}

	acc, err := svc.Get(ctx, "u2")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if acc.Name != "Bea" {
		t.Errorf("Name = %q, want %q", acc.Name, "Bea")
	}
	if acc.ConfirmedTasksCompleted != 1 || acc.ConfirmedMinutesCompleted != 40 {
		t.Errorf("confirmed = (%d, %d), want (1, 40)", acc.ConfirmedTasksCompleted, acc.ConfirmedMinutesCompleted)
	}
	if acc.TasksCompleted != 0 {
		t.Errorf("TasksCompleted = %d, want 0", acc.TasksCompleted)
	}
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(setupTestDB(t)))

	tests := []struct {
		name string
		fn   func() error
		want error
	}{
		{"empty user", func() error { return svc.IncrementCompleted(ctx, "", 10) }, apperror.ErrInvalidArgument},
		{"zero minutes", func() error { return svc.IncrementCompleted(ctx, "u1", 0) }, apperror.ErrInvalidArgument},
		{"negative minutes", func() error { return svc.IncrementConfirmed(ctx, "u1", -5) }, apperror.ErrInvalidArgument},
		{"ensure without id", func() error { _, err := svc.Ensure(ctx, "  ", "x"); return err }, apperror.ErrInvalidArgument},
		{"missing account", func() error { _, err := svc.Get(ctx, "ghost"); return err }, apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestService_EnsureKeepsNameWhenBlank(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(setupTestDB(t)))

	if _, err := svc.Ensure(ctx, "u1", "Ada"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	acc, err := svc.Ensure(ctx, "u1", "")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if acc.Name != "Ada" {
		t.Errorf("Name = %q, want %q", acc.Name, "Ada")
	}
}

func TestService_ListStats(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(setupTestDB(t)))

	if err := svc.IncrementCompleted(ctx, "a", 50); err != nil {
		t.Fatalf("IncrementCompleted() error = %v", err)
	}
	if err := svc.IncrementCompleted(ctx, "b", 80); err != nil {
		t.Fatalf("IncrementCompleted() error = %v", err)
	}

	stats, err := svc.ListStats(ctx, []string{"b", "missing", "a"})
	if err != nil {
		t.Fatalf("ListStats() error = %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("len(stats) = %d, want 3", len(stats))
	}
	wantOrder := []string{"b", "missing", "a"}
	for i, id := range wantOrder {
		if stats[i].UserID != id {
			t.Errorf("stats[%d].UserID = %q, want %q", i, stats[i].UserID, id)
		}
	}
	if stats[1].TasksCompleted != 0 {
		t.Errorf("missing user TasksCompleted = %d, want 0", stats[1].TasksCompleted)
	}
	if stats[0].MinutesCompleted != 80 {
		t.Errorf("b MinutesCompleted = %d, want 80", stats[0].MinutesCompleted)
	}
}
