package notification

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/notification"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/group"
	"github.com/google/uuid"
)

// Service stores and resolves per-recipient notifications.
type Service struct {
	repo      *Repository
	groups    group.GroupPort
	publisher events.Publisher
}

// NewService creates a new notification service. groups may be nil, in
// which case accepted invites are not turned into memberships.
func NewService(repo *Repository, groups group.GroupPort, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{repo: repo, groups: groups, publisher: publisher}
}

// Create stores a pending notification and announces it for live delivery.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Notification, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return nil, apperror.InvalidArgument("userId is required")
	}
	if !in.Type.Valid() {
		return nil, apperror.InvalidArgument("unknown notification type %q", in.Type)
	}

	n := &domain.Notification{
		ID:           uuid.New().String(),
		UserID:       in.UserID,
		Type:         in.Type,
		Message:      in.Message,
		Status:       domain.StatusPending,
		GroupID:      in.GroupID,
		GroupName:    in.GroupName,
		FromUserID:   in.FromUserID,
		FromUserName: in.FromUserName,
		Extra:        in.Extra,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, apperror.Internal(err, "create notification")
	}

	err := s.publisher.NotificationCreated(events.NotificationCreatedEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           string(n.Type),
		Message:        n.Message,
		FromUserID:     n.FromUserID,
		GroupID:        n.GroupID,
		TaskID:         n.Extra.TaskID,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		log.Printf("[notification] Warning: failed to publish NotificationCreated for %s: %v", n.ID, err)
	}
	return n, nil
}

// ResolveByTask marks every notification about taskID as accepted.
func (s *Service) ResolveByTask(ctx context.Context, taskID string) (int64, error) {
	if taskID == "" {
		return 0, apperror.InvalidArgument("taskId is required")
	}
	n, err := s.repo.UpdateStatusByTask(ctx, taskID, "", domain.StatusAccepted)
	if err != nil {
		return 0, apperror.Internal(err, "resolve notifications")
	}
	return n, nil
}

// DeleteByTypeAndTask removes every notification of type t about taskID.
func (s *Service) DeleteByTypeAndTask(ctx context.Context, t domain.Type, taskID string) (int64, error) {
	if taskID == "" {
		return 0, apperror.InvalidArgument("taskId is required")
	}
	if !t.Valid() {
		return 0, apperror.InvalidArgument("unknown notification type %q", t)
	}
	n, err := s.repo.DeleteByTypeAndTask(ctx, t, taskID)
	if err != nil {
		return 0, apperror.Internal(err, "delete notifications")
	}
	return n, nil
}

// MarkRecipient records userID's answer on their notifications about taskID.
func (s *Service) MarkRecipient(ctx context.Context, userID, taskID string, status domain.Status) error {
	if userID == "" || taskID == "" {
		return apperror.InvalidArgument("userId and taskId are required")
	}
	if !status.Valid() {
		return apperror.InvalidArgument("unknown status %q", status)
	}
	if _, err := s.repo.UpdateStatusByTask(ctx, taskID, userID, status); err != nil {
		return apperror.Internal(err, "mark recipient")
	}
	return nil
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	if userID == "" {
		return nil, apperror.InvalidArgument("userId is required")
	}
	list, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "list notifications")
	}
	return list, nil
}

// UpdateStatus answers a notification. A terminal answer removes the
// record; accepting a group invite first adds the recipient to the group.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Notification, error) {
	if !status.Valid() {
		return nil, apperror.InvalidArgument("unknown status %q", status)
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !status.IsTerminal() {
		if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
			return nil, err
		}
		n.Status = status
		return n, nil
	}

	if status == domain.StatusAccepted && n.Type == domain.TypeGroupInvite {
		if n.GroupID == "" {
			return nil, apperror.InvalidState("invite %s has no group", id)
		}
		if s.groups == nil {
			return nil, apperror.Internal(nil, "group service unavailable")
		}
		if err := s.groups.AddMember(ctx, n.GroupID, n.UserID); err != nil {
			return nil, fmt.Errorf("failed to join group %s: %w", n.GroupID, err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, apperror.Internal(err, "delete answered notification")
	}
	n.Status = status
	return n, nil
}

// Delete removes a notification. Deleting a missing record succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.InvalidArgument("notificationId is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Internal(err, "delete notification")
	}
	return nil
}

// Invite stores the group_invite notification for an invitation.
func (s *Service) Invite(ctx context.Context, e events.GroupInviteSentEvent, fromUserName string) (*domain.Notification, error) {
	sender := fromUserName
	if sender == "" {
		sender = e.FromUserID
	}
	return s.Create(ctx, CreateInput{
		UserID:       e.UserID,
		Type:         domain.TypeGroupInvite,
		Message:      fmt.Sprintf("%s invited you to join %s", sender, e.GroupName),
		GroupID:      e.GroupID,
		GroupName:    e.GroupName,
		FromUserID:   e.FromUserID,
		FromUserName: fromUserName,
	})
}
