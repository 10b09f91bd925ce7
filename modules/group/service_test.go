package group

import (
	"context"
	"testing"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/group"
	"github.com/example/lockin/events"
	"github.com/example/lockin/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *events.Recorder) {
	t.Helper()

	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Group{}, &domain.Member{}))
	t.Cleanup(func() { _ = storage.Close(db) })

	rec := &events.Recorder{}
	return NewService(NewRepository(db), rec), rec
}

func TestService_CreateInvitesEveryoneButOwner(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestService(t)

	g, err := svc.Create(ctx, "owner", "Study buddies", true, []string{"u2", " ", "owner", "u3", "u2"})
	require.NoError(t, err)

	loaded, err := svc.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, loaded.MemberIDs())
	assert.True(t, loaded.ConfirmationRequired)

	require.Len(t, rec.Invites, 2)
	assert.Equal(t, "u2", rec.Invites[0].UserID)
	assert.Equal(t, "u3", rec.Invites[1].UserID)
	assert.Equal(t, "Study buddies", rec.Invites[0].GroupName)
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Create(ctx, "", "name", false, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = svc.Create(ctx, "owner", "  ", false, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestService_Membership(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestService(t)

	g, err := svc.Create(ctx, "u1", "Gym", false, nil)
	require.NoError(t, err)
	other, err := svc.Create(ctx, "u9", "Reading", false, nil)
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(ctx, g.ID, "u2"))
	require.NoError(t, svc.AddMember(ctx, g.ID, "u2"))
	require.NoError(t, svc.AddMember(ctx, other.ID, "u2"))

	groups, err := svc.GroupsContaining(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, m := range groups {
		if m.GroupID == g.ID {
			assert.ElementsMatch(t, []string{"u1", "u2"}, m.Members)
		}
	}

	require.NoError(t, svc.RemoveMember(ctx, g.ID, "u2"))
	groups, err = svc.GroupsContaining(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, other.ID, groups[0].GroupID)

	var removed int
	for _, e := range rec.GroupChanges {
		if e.Change == events.GroupMemberRemoved && e.UserID == "u2" {
			removed++
		}
	}
	assert.Equal(t, 1, removed)

	assert.ErrorIs(t, svc.AddMember(ctx, "missing", "u2"), apperror.ErrNotFound)
}

func TestService_SetConfirmationPolicy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	g, err := svc.Create(ctx, "u1", "Gym", false, nil)
	require.NoError(t, err)

	require.NoError(t, svc.SetConfirmationPolicy(ctx, g.ID, true))
	m, err := svc.GetMembership(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, m.ConfirmationRequired)

	assert.ErrorIs(t, svc.SetConfirmationPolicy(ctx, "missing", true), apperror.ErrNotFound)
}

func TestService_DeleteOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	g, err := svc.Create(ctx, "u1", "Gym", false, nil)
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, g.ID, "u2"))

	assert.ErrorIs(t, svc.Delete(ctx, g.ID, "u2"), apperror.ErrInvalidState)
	require.NoError(t, svc.Delete(ctx, g.ID, "u1"))

	_, err = svc.Get(ctx, g.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	groups, err := svc.GroupsContaining(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, groups)
}
