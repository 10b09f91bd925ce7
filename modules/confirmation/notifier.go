package confirmation

import (
	"context"

	domain "github.com/example/lockin/domain/notification"
	"github.com/example/lockin/modules/notification"
)

// notifier sends new notifications through the notification module so it
// still emits NotificationCreated, and writes status changes through a
// service on the shared database so they join an answer's transaction.
type notifier struct {
	notification.NotifierPort
	local *notification.Service
}

func newNotifier(remote notification.NotifierPort, local *notification.Service) *notifier {
	return &notifier{NotifierPort: remote, local: local}
}

func (n *notifier) ResolveByTask(ctx context.Context, taskID string) (int64, error) {
	return n.local.ResolveByTask(ctx, taskID)
}

func (n *notifier) DeleteByTypeAndTask(ctx context.Context, t domain.Type, taskID string) (int64, error) {
	return n.local.DeleteByTypeAndTask(ctx, t, taskID)
}

func (n *notifier) MarkRecipient(ctx context.Context, userID, taskID string, status domain.Status) error {
	return n.local.MarkRecipient(ctx, userID, taskID, status)
}
