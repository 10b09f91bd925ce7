package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// Group change kinds.
const (
	GroupMemberAdded   = "member_added"
	GroupMemberRemoved = "member_removed"
	GroupPolicyChanged = "policy_changed"
	GroupDeleted       = "deleted"
)

// GroupChangedEvent is emitted when membership or the confirmation policy changes.
type GroupChangedEvent struct {
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id,omitempty"`
	Change    string    `json:"change"`
	ChangedAt time.Time `json:"changed_at"`
}

// GroupChangedV1 is the typed event definition for group changes.
// Subject: events.group.v1.group-changed
var GroupChangedV1 = helper.EventDefinition[GroupChangedEvent](
	"group", "GroupChanged", "v1",
)

// GroupInviteSentEvent asks the notification module to invite a user.
type GroupInviteSentEvent struct {
	GroupID    string    `json:"group_id"`
	GroupName  string    `json:"group_name"`
	FromUserID string    `json:"from_user_id"`
	UserID     string    `json:"user_id"`
	SentAt     time.Time `json:"sent_at"`
}

// GroupInviteSentV1 is the typed event definition for group invitations.
// Subject: events.group.v1.group-invite-sent
var GroupInviteSentV1 = helper.EventDefinition[GroupInviteSentEvent](
	"group", "GroupInviteSent", "v1",
)
