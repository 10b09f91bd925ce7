package confirmation

import (
	"context"
	"errors"
	"sync"
	"testing"

	domainaccount "github.com/example/lockin/domain/account"
	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/confirmation"
	domainnotification "github.com/example/lockin/domain/notification"
	domaintask "github.com/example/lockin/domain/task"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/notification"
	"github.com/example/lockin/modules/task"
	"github.com/example/lockin/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc           *Service
	repo          *Repository
	tasks         *task.Service
	accounts      *account.Service
	notifications *notification.Service
	rec           *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Confirmation{},
		&domaintask.Task{},
		&domainaccount.Account{},
		&domainnotification.Notification{},
	))
	t.Cleanup(func() { _ = storage.Close(db) })

	rec := &events.Recorder{}
	accounts := account.NewService(account.NewRepository(db))
	tasks := task.NewService(task.NewRepository(db), accounts, rec)
	notifications := notification.NewService(notification.NewRepository(db), nil, rec)

	repo := NewRepository(db)
	return &fixture{
		svc:           NewService(repo, tasks, accounts, notifications, rec),
		repo:          repo,
		tasks:         tasks,
		accounts:      accounts,
		notifications: notifications,
		rec:           rec,
	}
}

// completedTask creates a task for owner and completes it with actualTime.
func (f *fixture) completedTask(t *testing.T, owner string, actualTime int) *domaintask.Task {
	t.Helper()
	ctx := context.Background()
	created, err := f.tasks.Create(ctx, task.CreateInput{OwnerID: owner, Title: "Essay", EstimatedTime: 60})
	require.NoError(t, err)
	done, err := f.tasks.Complete(ctx, created.ID, actualTime)
	require.NoError(t, err)
	return done
}

func (f *fixture) request(t *testing.T, tk *domaintask.Task, peers ...string) string {
	t.Helper()
	id, err := f.svc.RequestConfirmation(context.Background(), RequestInput{
		TaskID:      tk.ID,
		RequestedBy: tk.OwnerID,
		PeerIDs:     peers,
		ActualTime:  *tk.ActualTime,
		TaskName:    tk.Title,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) pendingConfirmationNotices(t *testing.T, userID string) int {
	t.Helper()
	list, err := f.notifications.List(context.Background(), userID)
	require.NoError(t, err)
	var n int
	for _, item := range list {
		if item.Type == domainnotification.TypeTaskConfirmation && item.Status == domainnotification.StatusPending {
			n++
		}
	}
	return n
}

func TestService_RequestConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.accounts.Ensure(ctx, "u1", "Ada")
	require.NoError(t, err)
	tk := f.completedTask(t, "u1", 75)

	id := f.request(t, tk, "u2", "u1", " ", "u3", "u2")
	assert.NotEmpty(t, id)

	list, err := f.svc.GetConfirmations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PeerSet{"u2", "u3"}, list[0].SentTo)
	assert.Equal(t, domain.StatusPending, list[0].Status)

	inbox, err := f.notifications.List(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, tk.ID, inbox[0].Extra.TaskID)
	assert.Equal(t, 75, inbox[0].Extra.ActualTime)
	assert.Equal(t, "Ada", inbox[0].FromUserName)
	assert.Equal(t, 1, f.pendingConfirmationNotices(t, "u3"))
}

func TestService_RequestConfirmationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RequestInput
	}{
		{"only the requester", RequestInput{TaskID: "t1", RequestedBy: "u1", PeerIDs: []string{"u1"}}},
		{"blank peers", RequestInput{TaskID: "t1", RequestedBy: "u1", PeerIDs: []string{"", "  "}}},
		{"no peers", RequestInput{TaskID: "t1", RequestedBy: "u1"}},
		{"missing task", RequestInput{RequestedBy: "u1", PeerIDs: []string{"u2"}}},
		{"missing requester", RequestInput{TaskID: "t1", PeerIDs: []string{"u2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RequestConfirmation(ctx, tt.in)
			assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
		})
	}

	list, err := f.svc.GetConfirmations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_NewRequestSupersedesOld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.completedTask(t, "u1", 30)

	first := f.request(t, tk, "u2")
	second := f.request(t, tk, "u3")
	assert.NotEqual(t, first, second)

	list, err := f.svc.GetConfirmations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second, list[0].ID)

	assert.Equal(t, 0, f.pendingConfirmationNotices(t, "u2"))
	assert.Equal(t, 1, f.pendingConfirmationNotices(t, "u3"))

	_, err = f.svc.ConfirmTask(ctx, tk.ID, "u2")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_ConfirmTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.completedTask(t, "u1", 75)
	f.request(t, tk, "u2", "u3")

	claimed, err := f.svc.ConfirmTask(ctx, tk.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, claimed.Status)
	assert.True(t, claimed.ConfirmedBy.Contains("u2"))

	stored, err := f.tasks.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, domaintask.StatusConfirmed, stored.Status)

	acc, err := f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, acc.ConfirmedTasksCompleted)
	assert.Equal(t, 75, acc.ConfirmedMinutesCompleted)
	assert.Equal(t, 1, acc.TasksCompleted)

	list, err := f.svc.GetConfirmations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Equal(t, 0, f.pendingConfirmationNotices(t, "u2"))
	assert.Equal(t, 0, f.pendingConfirmationNotices(t, "u3"))

	require.Len(t, f.rec.Confirmed, 1)
	assert.Equal(t, "u1", f.rec.Confirmed[0].OwnerID)
	assert.Equal(t, "u2", f.rec.Confirmed[0].PeerID)
	assert.Equal(t, 75, f.rec.Confirmed[0].ActualTime)

	_, err = f.svc.ConfirmTask(ctx, tk.ID, "u3")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_ConfirmTaskRequiresCompletedTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending, err := f.tasks.Create(ctx, task.CreateInput{OwnerID: "u1", Title: "Run", EstimatedTime: 20})
	require.NoError(t, err)

	_, err = f.svc.RequestConfirmation(ctx, RequestInput{TaskID: pending.ID, RequestedBy: "u1", PeerIDs: []string{"u2"}, ActualTime: 20})
	require.NoError(t, err)

	_, err = f.svc.ConfirmTask(ctx, pending.ID, "u2")
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	peers, err := f.svc.GetPendingConfirmationsForPeer(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, peers, 1)
}

func TestService_ConfirmTaskByStrangerIsNotFound(t *testing.T) {
	f := newFixture(t)
	tk := f.completedTask(t, "u1", 10)
	f.request(t, tk, "u2")

	_, err := f.svc.ConfirmTask(context.Background(), tk.ID, "u9")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestService_DenyTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.completedTask(t, "u1", 40)
	f.request(t, tk, "u2", "u3")

	claimed, err := f.svc.DenyTask(ctx, tk.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeclined, claimed.Status)
	assert.True(t, claimed.DeniedBy.Contains("u3"))

	stored, err := f.tasks.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, domaintask.StatusCompleted, stored.Status)

	acc, err := f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, acc.ConfirmedTasksCompleted)
	assert.Equal(t, 0, acc.ConfirmedMinutesCompleted)

	assert.Empty(t, f.rec.Confirmed)
	assert.Equal(t, 0, f.pendingConfirmationNotices(t, "u2"))

	_, err = f.svc.DenyTask(ctx, tk.ID, "u2")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

var errUnavailable = errors.New("unavailable")

// failOnce reports errUnavailable on its first call only.
type failOnce struct{ failed bool }

func (f *failOnce) fail() error {
	if f.failed {
		return nil
	}
	f.failed = true
	return errUnavailable
}

type flakyStats struct {
	account.StatsPort
	failOnce
}

func (s *flakyStats) IncrementConfirmed(ctx context.Context, userID string, minutes int) error {
	if err := s.fail(); err != nil {
		return err
	}
	return s.StatsPort.IncrementConfirmed(ctx, userID, minutes)
}

type flakyTasks struct {
	task.TaskPort
	failOnce
}

func (t *flakyTasks) MarkConfirmed(ctx context.Context, id string) (*domaintask.Task, error) {
	if err := t.fail(); err != nil {
		return nil, err
	}
	return t.TaskPort.MarkConfirmed(ctx, id)
}

type flakyNotifier struct {
	notification.NotifierPort
	failOnce
}

func (n *flakyNotifier) DeleteByTypeAndTask(ctx context.Context, typ domainnotification.Type, taskID string) (int64, error) {
	if err := n.fail(); err != nil {
		return 0, err
	}
	return n.NotifierPort.DeleteByTypeAndTask(ctx, typ, taskID)
}

// assertUnanswered checks that the request for tk is still open to every
// peer and nothing was counted.
func (f *fixture) assertUnanswered(t *testing.T, tk *domaintask.Task, peers ...string) {
	t.Helper()
	ctx := context.Background()

	stored, err := f.tasks.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, domaintask.StatusCompleted, stored.Status)

	acc, err := f.accounts.Get(ctx, tk.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, 0, acc.ConfirmedTasksCompleted)
	assert.Equal(t, 0, acc.ConfirmedMinutesCompleted)

	for _, peer := range peers {
		open, err := f.svc.GetPendingConfirmationsForPeer(ctx, peer)
		require.NoError(t, err)
		assert.Len(t, open, 1, peer)
		assert.Equal(t, 1, f.pendingConfirmationNotices(t, peer), peer)
	}
	assert.Empty(t, f.rec.Confirmed)
}

func TestService_ConfirmTaskFailureChangesNothing(t *testing.T) {
	tests := []struct {
		name  string
		build func(f *fixture) *Service
	}{
		{"stats", func(f *fixture) *Service {
			return NewService(f.repo, f.tasks, &flakyStats{StatsPort: f.accounts}, f.notifications, f.rec)
		}},
		{"task status", func(f *fixture) *Service {
			return NewService(f.repo, &flakyTasks{TaskPort: f.tasks}, f.accounts, f.notifications, f.rec)
		}},
		{"notification cleanup", func(f *fixture) *Service {
			return NewService(f.repo, f.tasks, f.accounts, &flakyNotifier{NotifierPort: f.notifications}, f.rec)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			tk := f.completedTask(t, "u1", 75)
			f.request(t, tk, "u2", "u3")
			svc := tt.build(f)

			_, err := svc.ConfirmTask(ctx, tk.ID, "u2")
			require.ErrorIs(t, err, errUnavailable)
			f.assertUnanswered(t, tk, "u2", "u3")

			claimed, err := svc.ConfirmTask(ctx, tk.ID, "u3")
			require.NoError(t, err)
			assert.True(t, claimed.ConfirmedBy.Contains("u3"))

			stored, err := f.tasks.Get(ctx, tk.ID)
			require.NoError(t, err)
			assert.Equal(t, domaintask.StatusConfirmed, stored.Status)

			acc, err := f.accounts.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, 1, acc.ConfirmedTasksCompleted)
			assert.Equal(t, 75, acc.ConfirmedMinutesCompleted)
			assert.Equal(t, 0, f.pendingConfirmationNotices(t, "u2"))
			assert.Len(t, f.rec.Confirmed, 1)
		})
	}
}

func TestService_DenyTaskFailureChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.completedTask(t, "u1", 40)
	f.request(t, tk, "u2", "u3")
	svc := NewService(f.repo, f.tasks, f.accounts, &flakyNotifier{NotifierPort: f.notifications}, f.rec)

	_, err := svc.DenyTask(ctx, tk.ID, "u2")
	require.ErrorIs(t, err, errUnavailable)
	f.assertUnanswered(t, tk, "u2", "u3")

	claimed, err := svc.DenyTask(ctx, tk.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeclined, claimed.Status)

	open, err := f.svc.GetPendingConfirmationsForPeer(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, open)
	assert.Equal(t, 0, f.pendingConfirmationNotices(t, "u3"))
}

func TestService_AcceptAndDenyRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.completedTask(t, "u1", 50)
	f.request(t, tk, "u2", "u3")

	var wg sync.WaitGroup
	var confirmErr, denyErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, confirmErr = f.svc.ConfirmTask(ctx, tk.ID, "u2")
	}()
	go func() {
		defer wg.Done()
		_, denyErr = f.svc.DenyTask(ctx, tk.ID, "u3")
	}()
	wg.Wait()

	winners := 0
	for _, err := range []error{confirmErr, denyErr} {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	}
	assert.Equal(t, 1, winners)

	acc, err := f.accounts.Get(ctx, "u1")
	require.NoError(t, err)
	stored, err := f.tasks.Get(ctx, tk.ID)
	require.NoError(t, err)
	if confirmErr == nil {
		assert.Equal(t, domaintask.StatusConfirmed, stored.Status)
		assert.Equal(t, 1, acc.ConfirmedTasksCompleted)
	} else {
		assert.Equal(t, domaintask.StatusCompleted, stored.Status)
		assert.Equal(t, 0, acc.ConfirmedTasksCompleted)
	}
}

func TestService_GetPendingConfirmationsForPeer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.completedTask(t, "u1", 10)
	b := f.completedTask(t, "u4", 20)
	f.request(t, a, "u2", "u3")
	f.request(t, b, "u22")

	list, err := f.svc.GetPendingConfirmationsForPeer(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].TaskID)

	list, err = f.svc.GetPendingConfirmationsForPeer(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.GetPendingConfirmationsForPeer(ctx, "")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestService_DeleteForTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.completedTask(t, "u1", 10)
	f.request(t, tk, "u2")

	require.NoError(t, f.svc.DeleteForTask(ctx, tk.ID))
	require.NoError(t, f.svc.DeleteForTask(ctx, tk.ID))

	list, err := f.svc.GetConfirmations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	inbox, err := f.notifications.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, inbox)
}
