package events

import "sync"

// Recorder keeps every published event in memory. It is used by tests and by
// the one-shot CLI commands that run without a bus.
type Recorder struct {
	mu                   sync.Mutex
	Completed            []TaskCompletedEvent
	Deleted              []TaskDeletedEvent
	Confirmed            []TaskConfirmedEvent
	NotificationsCreated []NotificationCreatedEvent
	GroupChanges         []GroupChangedEvent
	Invites              []GroupInviteSentEvent
}

func (r *Recorder) TaskCompleted(e TaskCompletedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Completed = append(r.Completed, e)
	return nil
}

func (r *Recorder) TaskDeleted(e TaskDeletedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deleted = append(r.Deleted, e)
	return nil
}

func (r *Recorder) TaskConfirmed(e TaskConfirmedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Confirmed = append(r.Confirmed, e)
	return nil
}

func (r *Recorder) NotificationCreated(e NotificationCreatedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.NotificationsCreated = append(r.NotificationsCreated, e)
	return nil
}

func (r *Recorder) GroupChanged(e GroupChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GroupChanges = append(r.GroupChanges, e)
	return nil
}

func (r *Recorder) GroupInviteSent(e GroupInviteSentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invites = append(r.Invites, e)
	return nil
}
