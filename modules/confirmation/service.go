package confirmation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/lockin/domain/apperror"
	domain "github.com/example/lockin/domain/confirmation"
	domainnotification "github.com/example/lockin/domain/notification"
	domaintask "github.com/example/lockin/domain/task"
	"github.com/example/lockin/events"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/notification"
	"github.com/example/lockin/modules/task"
	"github.com/google/uuid"
)

// RequestInput asks peers to attest a completed task.
type RequestInput struct {
	TaskID      string   `json:"task_id"`
	RequestedBy string   `json:"requested_by"`
	PeerIDs     []string `json:"peer_ids"`
	ActualTime  int      `json:"actual_time"`
	TaskName    string   `json:"task_name"`
}

// Service runs the peer confirmation workflow.
type Service struct {
	repo      *Repository
	tasks     task.TaskPort
	stats     account.StatsPort
	notifier  notification.NotifierPort
	publisher events.Publisher
}

// NewService creates a new confirmation service.
func NewService(repo *Repository, tasks task.TaskPort, stats account.StatsPort, notifier notification.NotifierPort, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{
		repo:      repo,
		tasks:     tasks,
		stats:     stats,
		notifier:  notifier,
		publisher: publisher,
	}
}

// RequestConfirmation replaces any earlier request for the task and sends a
// task_confirmation notification to every peer. It returns the new
// confirmation id.
func (s *Service) RequestConfirmation(ctx context.Context, in RequestInput) (string, error) {
	in.TaskID = strings.TrimSpace(in.TaskID)
	in.RequestedBy = strings.TrimSpace(in.RequestedBy)
	if in.TaskID == "" || in.RequestedBy == "" {
		return "", apperror.InvalidArgument("taskId and requestedBy are required")
	}
	peers := domain.Recipients(in.RequestedBy, in.PeerIDs)
	if len(peers) == 0 {
		return "", apperror.InvalidArgument("at least one peer other than the requester is required")
	}

	if _, err := s.repo.DeleteByTask(ctx, in.TaskID); err != nil {
		return "", apperror.Internal(err, "clear previous confirmation")
	}
	if _, err := s.notifier.DeleteByTypeAndTask(ctx, domainnotification.TypeTaskConfirmation, in.TaskID); err != nil {
		return "", fmt.Errorf("failed to clear previous notifications: %w", err)
	}

	c := &domain.Confirmation{
		ID:          uuid.New().String(),
		TaskID:      in.TaskID,
		RequestedBy: in.RequestedBy,
		SentTo:      peers,
		ConfirmedBy: domain.PeerSet{},
		DeniedBy:    domain.PeerSet{},
		Status:      domain.StatusPending,
		TaskName:    in.TaskName,
		ActualTime:  in.ActualTime,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return "", apperror.Internal(err, "create confirmation")
	}

	sender := s.displayName(ctx, in.RequestedBy)
	for _, peer := range peers {
		_, err := s.notifier.Create(ctx, notification.CreateInput{
			UserID:       peer,
			Type:         domainnotification.TypeTaskConfirmation,
			Message:      fmt.Sprintf("%s asked you to confirm %q (%d min)", sender, in.TaskName, in.ActualTime),
			FromUserID:   in.RequestedBy,
			FromUserName: sender,
			Extra: domainnotification.Extra{
				TaskID:     in.TaskID,
				TaskName:   in.TaskName,
				ActualTime: in.ActualTime,
			},
		})
		if err != nil {
			return "", fmt.Errorf("failed to notify %s: %w", peer, err)
		}
	}

	log.Printf("[confirmation] Task %s: confirmation %s sent to %d peers", in.TaskID, c.ID, len(peers))
	return c.ID, nil
}

// ConfirmTask records peerID's attestation. The first answer wins; the
// owner's confirmed stats grow by the task's actual time and the
// confirmation is removed. Every write commits in one transaction, so a
// failed call leaves the task, the stats, the notifications and the
// confirmation as they were.
func (s *Service) ConfirmTask(ctx context.Context, taskID, peerID string) (*domain.Confirmation, error) {
	pending, err := s.pendingFor(ctx, taskID, peerID)
	if err != nil {
		return nil, err
	}

	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != domaintask.StatusCompleted {
		return nil, apperror.InvalidState("task %s is %s, not completed", taskID, t.Status)
	}
	actualTime := 0
	if t.ActualTime != nil {
		actualTime = *t.ActualTime
	}

	var claimed *domain.Confirmation
	err = s.repo.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if claimed, err = s.repo.Claim(ctx, pending, peerID, domain.StatusVerified); err != nil {
			return err
		}
		if err := s.notifier.MarkRecipient(ctx, peerID, taskID, domainnotification.StatusAccepted); err != nil {
			return fmt.Errorf("failed to mark %s accepted on %s: %w", peerID, taskID, err)
		}
		if _, err := s.tasks.MarkConfirmed(ctx, taskID); err != nil {
			return fmt.Errorf("failed to confirm task %s: %w", taskID, err)
		}
		if actualTime > 0 {
			if err := s.stats.IncrementConfirmed(ctx, t.OwnerID, actualTime); err != nil {
				return fmt.Errorf("failed to count confirmation of %s: %w", taskID, err)
			}
		} else {
			log.Printf("[confirmation] Warning: task %s has no actual time, confirmed stats unchanged", taskID)
		}
		return s.close(ctx, claimed)
	})
	if err != nil {
		return nil, err
	}

	err = s.publisher.TaskConfirmed(events.TaskConfirmedEvent{
		TaskID:      taskID,
		OwnerID:     t.OwnerID,
		PeerID:      peerID,
		ActualTime:  actualTime,
		ConfirmedAt: time.Now(),
	})
	if err != nil {
		log.Printf("[confirmation] Warning: failed to publish TaskConfirmed for %s: %v", taskID, err)
	}

	log.Printf("[confirmation] Task %s confirmed by %s", taskID, peerID)
	return claimed, nil
}

// DenyTask records peerID's refusal. The task stays completed and no stats
// change. Like ConfirmTask it commits all of its writes or none.
func (s *Service) DenyTask(ctx context.Context, taskID, peerID string) (*domain.Confirmation, error) {
	pending, err := s.pendingFor(ctx, taskID, peerID)
	if err != nil {
		return nil, err
	}

	var claimed *domain.Confirmation
	err = s.repo.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if claimed, err = s.repo.Claim(ctx, pending, peerID, domain.StatusDeclined); err != nil {
			return err
		}
		if err := s.notifier.MarkRecipient(ctx, peerID, taskID, domainnotification.StatusDeclined); err != nil {
			return fmt.Errorf("failed to mark %s declined on %s: %w", peerID, taskID, err)
		}
		return s.close(ctx, claimed)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[confirmation] Task %s denied by %s", taskID, peerID)
	return claimed, nil
}

// GetConfirmations lists the live confirmations userID requested.
func (s *Service) GetConfirmations(ctx context.Context, userID string) ([]domain.Confirmation, error) {
	if userID == "" {
		return nil, apperror.InvalidArgument("userId is required")
	}
	list, err := s.repo.FindByRequester(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "list confirmations")
	}
	return list, nil
}

// GetPendingConfirmationsForPeer lists the confirmations still waiting on peerID.
func (s *Service) GetPendingConfirmationsForPeer(ctx context.Context, peerID string) ([]domain.Confirmation, error) {
	if peerID == "" {
		return nil, apperror.InvalidArgument("peerId is required")
	}
	candidates, err := s.repo.FindPendingSentTo(ctx, peerID)
	if err != nil {
		return nil, apperror.Internal(err, "list pending confirmations")
	}
	out := make([]domain.Confirmation, 0, len(candidates))
	for _, c := range candidates {
		if c.AwaitsResponseFrom(peerID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// DeleteForTask removes a task's confirmation and its notifications.
func (s *Service) DeleteForTask(ctx context.Context, taskID string) error {
	if taskID == "" {
		return apperror.InvalidArgument("taskId is required")
	}
	if _, err := s.repo.DeleteByTask(ctx, taskID); err != nil {
		return apperror.Internal(err, "delete confirmations for %s", taskID)
	}
	if _, err := s.notifier.DeleteByTypeAndTask(ctx, domainnotification.TypeTaskConfirmation, taskID); err != nil {
		return fmt.Errorf("failed to delete notifications for %s: %w", taskID, err)
	}
	return nil
}

func (s *Service) pendingFor(ctx context.Context, taskID, peerID string) (*domain.Confirmation, error) {
	if taskID == "" || peerID == "" {
		return nil, apperror.InvalidArgument("taskId and peerId are required")
	}
	c, err := s.repo.FindPendingByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !c.AwaitsResponseFrom(peerID) {
		return nil, apperror.NotFound("no pending confirmation for task %s awaits %s", taskID, peerID)
	}
	return c, nil
}

// close resolves and removes the task's remaining task_confirmation
// notifications, then the answered confirmation itself.
func (s *Service) close(ctx context.Context, c *domain.Confirmation) error {
	if _, err := s.notifier.ResolveByTask(ctx, c.TaskID); err != nil {
		return fmt.Errorf("failed to resolve notifications for %s: %w", c.TaskID, err)
	}
	if _, err := s.notifier.DeleteByTypeAndTask(ctx, domainnotification.TypeTaskConfirmation, c.TaskID); err != nil {
		return fmt.Errorf("failed to delete notifications for %s: %w", c.TaskID, err)
	}
	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return apperror.Internal(err, "delete confirmation %s", c.ID)
	}
	return nil
}

func (s *Service) displayName(ctx context.Context, userID string) string {
	if s.stats == nil {
		return userID
	}
	acc, err := s.stats.Get(ctx, userID)
	if err != nil || acc.Name == "" {
		return userID
	}
	return acc.Name
}
