package events

import (
	"github.com/go-monolith/mono"
)

// Publisher emits domain events. Services depend on this instead of the bus
// so tests can record what was announced.
type Publisher interface {
	TaskCompleted(TaskCompletedEvent) error
	TaskDeleted(TaskDeletedEvent) error
	TaskConfirmed(TaskConfirmedEvent) error
	NotificationCreated(NotificationCreatedEvent) error
	GroupChanged(GroupChangedEvent) error
	GroupInviteSent(GroupInviteSentEvent) error
}

// BusPublisher publishes on the mono event bus. A nil bus drops events.
type BusPublisher struct {
	bus mono.EventBus
}

// NewBusPublisher creates a publisher for bus.
func NewBusPublisher(bus mono.EventBus) *BusPublisher {
	return &BusPublisher{bus: bus}
}

func (p *BusPublisher) TaskCompleted(e TaskCompletedEvent) error {
	if p.bus == nil {
		return nil
	}
	return TaskCompletedV1.Publish(p.bus, e, nil)
}

func (p *BusPublisher) TaskDeleted(e TaskDeletedEvent) error {
	if p.bus == nil {
		return nil
	}
	return TaskDeletedV1.Publish(p.bus, e, nil)
}

func (p *BusPublisher) TaskConfirmed(e TaskConfirmedEvent) error {
	if p.bus == nil {
		return nil
	}
	return TaskConfirmedV1.Publish(p.bus, e, nil)
}

func (p *BusPublisher) NotificationCreated(e NotificationCreatedEvent) error {
	if p.bus == nil {
		return nil
	}
	return NotificationCreatedV1.Publish(p.bus, e, nil)
}

func (p *BusPublisher) GroupChanged(e GroupChangedEvent) error {
	if p.bus == nil {
		return nil
	}
	return GroupChangedV1.Publish(p.bus, e, nil)
}

func (p *BusPublisher) GroupInviteSent(e GroupInviteSentEvent) error {
	if p.bus == nil {
		return nil
	}
	return GroupInviteSentV1.Publish(p.bus, e, nil)
}

// Discard drops every event.
type Discard struct{}

func (Discard) TaskCompleted(TaskCompletedEvent) error { return nil }
func (Discard) TaskDeleted(TaskDeletedEvent) error { return nil }
func (Discard) TaskConfirmed(TaskConfirmedEvent) error { return nil }
func (Discard) NotificationCreated(NotificationCreatedEvent) error { return nil }
func (Discard) GroupChanged(GroupChangedEvent) error { return nil }
func (Discard) GroupInviteSent(GroupInviteSentEvent) error { return nil }
