package group

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/group"
	"github.com/example/lockin/events"
	"github.com/google/uuid"
)

// Service manages friend groups.
type Service struct {
	repo      *Repository
	publisher events.Publisher
}

// NewService creates a new group service.
func NewService(repo *Repository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{repo: repo, publisher: publisher}
}

// Create stores a new group with its owner as the only member and invites
// everyone in inviteUserIDs.
func (s *Service) Create(ctx context.Context, ownerID, name string, confirmationRequired bool, inviteUserIDs []string) (*domain.Group, error) {
	ownerID = strings.TrimSpace(ownerID)
	name = strings.TrimSpace(name)
	if ownerID == "" {
		return nil, apperror.InvalidArgument("ownerId is required")
	}
	if name == "" {
		return nil, apperror.InvalidArgument("name is required")
	}

	now := time.Now()
	g := &domain.Group{
		ID:                   uuid.New().String(),
		OwnerID:              ownerID,
		Name:                 name,
		ConfirmationRequired: confirmationRequired,
		Members:              []domain.Member{{UserID: ownerID, CreatedAt: now}},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, apperror.Internal(err, "create group")
	}

	invited := make(map[string]bool)
	for _, userID := range inviteUserIDs {
		userID = strings.TrimSpace(userID)
		if userID == "" || userID == ownerID || invited[userID] {
			continue
		}
		invited[userID] = true
		err := s.publisher.GroupInviteSent(events.GroupInviteSentEvent{
			GroupID:    g.ID,
			GroupName:  g.Name,
			FromUserID: ownerID,
			UserID:     userID,
			SentAt:     now,
		})
		if err != nil {
			log.Printf("[group] Warning: failed to publish invite for %s: %v", userID, err)
		}
	}

	s.changed(g.ID, ownerID, events.GroupMemberAdded)
	return g, nil
}

// Get returns a group with its members.
func (s *Service) Get(ctx context.Context, groupID string) (*domain.Group, error) {
	if groupID == "" {
		return nil, apperror.InvalidArgument("groupId is required")
	}
	return s.repo.FindByID(ctx, groupID)
}

// GetMembership returns the membership view of a group.
func (s *Service) GetMembership(ctx context.Context, groupID string) (*domain.Membership, error) {
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	m := g.ToMembership()
	return &m, nil
}

// GroupsContaining lists the groups userID belongs to.
func (s *Service) GroupsContaining(ctx context.Context, userID string) ([]domain.Membership, error) {
	if userID == "" {
		return nil, apperror.InvalidArgument("userId is required")
	}
	groups, err := s.repo.FindContaining(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "groups containing %s", userID)
	}
	out := make([]domain.Membership, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.ToMembership())
	}
	return out, nil
}

// AddMember adds userID to the group.
func (s *Service) AddMember(ctx context.Context, groupID, userID string) error {
	if groupID == "" || userID == "" {
		return apperror.InvalidArgument("groupId and userId are required")
	}
	if _, err := s.repo.FindByID(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.AddMember(ctx, groupID, userID); err != nil {
		return apperror.Internal(err, "add member")
	}
	s.changed(groupID, userID, events.GroupMemberAdded)
	return nil
}

// RemoveMember removes userID from the group.
func (s *Service) RemoveMember(ctx context.Context, groupID, userID string) error {
	if groupID == "" || userID == "" {
		return apperror.InvalidArgument("groupId and userId are required")
	}
	if _, err := s.repo.FindByID(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return apperror.Internal(err, "remove member")
	}
	s.changed(groupID, userID, events.GroupMemberRemoved)
	return nil
}

// SetConfirmationPolicy switches the group between confirmed and
// unconfirmed ranking.
func (s *Service) SetConfirmationPolicy(ctx context.Context, groupID string, required bool) error {
	if groupID == "" {
		return apperror.InvalidArgument("groupId is required")
	}
	if err := s.repo.SetConfirmationRequired(ctx, groupID, required); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return apperror.Internal(err, "set confirmation policy")
	}
	s.changed(groupID, "", events.GroupPolicyChanged)
	return nil
}

// Delete removes the group. Only the owner may delete it.
func (s *Service) Delete(ctx context.Context, groupID, userID string) error {
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if g.OwnerID != userID {
		return apperror.InvalidState("only the owner can delete group %s", groupID)
	}
	if err := s.repo.Delete(ctx, groupID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return apperror.Internal(err, "delete group")
	}
	s.changed(groupID, userID, events.GroupDeleted)
	return nil
}

func (s *Service) changed(groupID, userID, change string) {
	err := s.publisher.GroupChanged(events.GroupChangedEvent{
		GroupID:   groupID,
		UserID:    userID,
		Change:    change,
		ChangedAt: time.Now(),
	})
	if err != nil {
		log.Printf("[group] Warning: failed to publish %s for group %s: %v", change, groupID, err)
	}
}
