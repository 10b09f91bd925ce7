// Package confirmation defines peer confirmation requests for completed tasks.
package confirmation

import (
	"strings"
	"time"
)

// Status is the state of a confirmation request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusDeclined Status = "declined"
)

// Confirmation asks a set of peers to attest a task's completion.
// At most one exists per task; the first peer response resolves it.
type Confirmation struct {
	ID          string    `gorm:"primarykey;size:36" json:"confirmationId"`
	TaskID      string    `gorm:"size:36;not null;uniqueIndex" json:"taskId"`
	RequestedBy string    `gorm:"size:64;not null;index" json:"requestedBy"`
	SentTo      PeerSet   `gorm:"serializer:json;type:text" json:"sentTo"`
	ConfirmedBy PeerSet   `gorm:"serializer:json;type:text" json:"confirmedBy"`
	DeniedBy    PeerSet   `gorm:"serializer:json;type:text" json:"deniedBy"`
	Status      Status    `gorm:"size:16;not null;index" json:"status"`
	TaskName    string    `gorm:"size:200" json:"taskName,omitempty"`
	ActualTime  int       `json:"actualTime,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName returns the table name for Confirmation.
func (Confirmation) TableName() string {
	return "confirmations"
}

// AwaitsResponseFrom reports whether peerID was asked and has not answered yet.
func (c Confirmation) AwaitsResponseFrom(peerID string) bool {
	return c.Status == StatusPending &&
		c.SentTo.Contains(peerID) &&
		!c.ConfirmedBy.Contains(peerID) &&
		!c.DeniedBy.Contains(peerID)
}

// PeerSet is an ordered set of user ids.
type PeerSet []string

// Contains reports whether id is in the set.
func (s PeerSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// With returns a copy of the set including id.
func (s PeerSet) With(id string) PeerSet {
	if s.Contains(id) {
		return append(PeerSet(nil), s...)
	}
	return append(append(PeerSet(nil), s...), id)
}

// Recipients removes blanks, the requester and duplicates from peerIDs,
// keeping first-seen order.
func Recipients(requestedBy string, peerIDs []string) PeerSet {
	out := make(PeerSet, 0, len(peerIDs))
	for _, id := range peerIDs {
		id = strings.TrimSpace(id)
		if id == "" || id == requestedBy || out.Contains(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
