package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskConfirmedEvent is emitted after a peer accepted a confirmation and the
// owner's confirmed stats were incremented.
type TaskConfirmedEvent struct {
	TaskID      string    `json:"task_id"`
	OwnerID     string    `json:"owner_id"`
	PeerID      string    `json:"peer_id"`
	ActualTime  int       `json:"actual_time"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// TaskConfirmedV1 is the typed event definition for task confirmation.
// Subject: events.confirmation.v1.task-confirmed
var TaskConfirmedV1 = helper.EventDefinition[TaskConfirmedEvent](
	"confirmation", "TaskConfirmed", "v1",
)
