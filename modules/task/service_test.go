package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainaccount "github.com/example/lockin/domain/account"
	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/task"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	accounts *account.Service
	rec      *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Task{}, &domainaccount.Account{}))
	t.Cleanup(func() { _ = storage.Close(db) })

	accounts := account.NewService(account.NewRepository(db))
	rec := &events.Recorder{}
	return &fixture{
		svc:      NewService(NewRepository(db), accounts, rec),
		accounts: accounts,
		rec:      rec,
	}
}

func (f *fixture) create(t *testing.T, owner, title string) *domain.Task {
	t.Helper()
	task, err := f.svc.Create(context.Background(), CreateInput{OwnerID: owner, Title: title, EstimatedTime: 60})
	require.NoError(t, err)
	return task
}

func TestService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"missing owner", CreateInput{Title: "Essay", EstimatedTime: 30}},
		{"zero estimate", CreateInput{OwnerID: "u1", Title: "Essay"}},
		{"negative estimate", CreateInput{OwnerID: "u1", Title: "Essay", EstimatedTime: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
		})
	}

	task := f.create(t, "u1", "Essay")
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Nil(t, task.ActualTime)
	assert.NotEmpty(t, task.ID)
}

func TestService_CompleteCountsStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "u1", "Essay")

	done, err := f.svc.Complete(ctx, task.ID, 75)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	require.NotNil(t, done.ActualTime)
	assert.Equal(t, 75, *done.ActualTime)

	acc, err := f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, acc.TasksCompleted)
	assert.Equal(t, 75, acc.MinutesCompleted)

	require.Len(t, f.rec.Completed, 1)
	assert.Equal(t, events.TaskCompletedEvent{
		TaskID:      task.ID,
		OwnerID:     "u1",
		ActualTime:  75,
		CompletedAt: f.rec.Completed[0].CompletedAt,
	}, f.rec.Completed[0])

	stored, err := f.svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	require.NotNil(t, stored.ActualTime)
	assert.Equal(t, 75, *stored.ActualTime)
}

// flakyStats fails its first IncrementCompleted.
type flakyStats struct {
	account.StatsPort
	failed bool
}

func (s *flakyStats) IncrementCompleted(ctx context.Context, userID string, minutes int) error {
	if !s.failed {
		s.failed = true
		return errors.New("stats unavailable")
	}
	return s.StatsPort.IncrementCompleted(ctx, userID, minutes)
}

func TestService_CompleteRollsBackWhenStatsFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Ensure(ctx, "u1", "Ada")
	require.NoError(t, err)
	task := f.create(t, "u1", "Essay")
	svc := NewService(f.svc.repo, &flakyStats{StatsPort: f.accounts}, f.rec)

	_, err = svc.Complete(ctx, task.ID, 75)
	assert.ErrorIs(t, err, apperror.ErrInternal)

	stored, err := f.svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Nil(t, stored.ActualTime)

	acc, err := f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, acc.TasksCompleted)
	assert.Equal(t, 0, acc.MinutesCompleted)
	assert.Empty(t, f.rec.Completed)

	done, err := svc.Complete(ctx, task.ID, 75)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)

	acc, err = f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, acc.TasksCompleted)
	assert.Equal(t, 75, acc.MinutesCompleted)
	assert.Len(t, f.rec.Completed, 1)
}

func TestService_CompleteErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "u1", "Essay")

	_, err := f.svc.Complete(ctx, "missing", 10)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.Complete(ctx, task.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = f.svc.Complete(ctx, task.ID, 30)
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, task.ID, 30)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	acc, err := f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, acc.TasksCompleted)
	assert.Equal(t, 30, acc.MinutesCompleted)
}

func TestService_ConcurrentCompleteCountsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "u1", "Essay")

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Complete(ctx, task.ID, 20)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	}
	assert.Equal(t, 1, ok)

	acc, err := f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, acc.TasksCompleted)
}

func TestService_Edit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "u1", "Essay")

	title := "Final essay"
	estimate := 90
	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	edited, err := f.svc.Edit(ctx, task.ID, domain.Changes{Title: &title, EstimatedTime: &estimate, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "Final essay", edited.Title)
	assert.Equal(t, 90, edited.EstimatedTime)
	require.NotNil(t, edited.DueDate)
	assert.True(t, edited.DueDate.Equal(due))

	bad := 0
	_, err = f.svc.Edit(ctx, task.ID, domain.Changes{EstimatedTime: &bad})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = f.svc.Edit(ctx, "missing", domain.Changes{Title: &title})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	unchanged, err := f.svc.Edit(ctx, task.ID, domain.Changes{})
	require.NoError(t, err)
	assert.Equal(t, "Final essay", unchanged.Title)
}

func TestService_DeleteKeepsStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "u1", "Essay")
	_, err := f.svc.Complete(ctx, task.ID, 45)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, task.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, task.ID), apperror.ErrNotFound)

	require.Len(t, f.rec.Deleted, 1)
	assert.Equal(t, task.ID, f.rec.Deleted[0].TaskID)

	acc, err := f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, acc.TasksCompleted)
	assert.Equal(t, 45, acc.MinutesCompleted)
}

func TestService_MarkConfirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "u1", "Essay")

	_, err := f.svc.MarkConfirmed(ctx, task.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	_, err = f.svc.Complete(ctx, task.ID, 20)
	require.NoError(t, err)

	confirmed, err := f.svc.MarkConfirmed(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)

	_, err = f.svc.MarkConfirmed(ctx, task.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	_, err = f.svc.MarkConfirmed(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_ListAndSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, "u1", "first")
	time.Sleep(2 * time.Millisecond)
	second := f.create(t, "u1", "second")
	f.create(t, "u2", "someone else")

	list, err := f.svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = f.svc.Complete(ctx, first.ID, 10)
	require.NoError(t, err)

	n, err := f.svc.SweepHidden(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.svc.SweepHidden(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	list, err = f.svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestSweeper_StartStop(t *testing.T) {
	f := newFixture(t)
	task := f.create(t, "u1", "Essay")
	_, err := f.svc.Complete(context.Background(), task.ID, 10)
	require.NoError(t, err)

	s := NewSweeper(f.svc, 10*time.Millisecond)
	s.Start()

	require.Eventually(t, func() bool {
		list, err := f.svc.List(context.Background(), "u1")
		return err == nil && len(list) == 0
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
