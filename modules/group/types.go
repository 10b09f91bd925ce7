package group

import (
	domain "github.com/example/lockin/domain/group"
)

// CreateGroupRequest is the request for creating a group.
type CreateGroupRequest struct {
	OwnerID              string   `json:"owner_id"`
	Name                 string   `json:"name"`
	ConfirmationRequired bool     `json:"confirmation_required"`
	InviteUserIDs        []string `json:"invite_user_ids,omitempty"`
}

// GetGroupRequest is the request for reading a group.
type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

// GroupResponse is the membership view of a single group.
type GroupResponse struct {
	Group   domain.Membership `json:"group"`
	OwnerID string            `json:"owner_id"`
}

// GroupsContainingRequest lists the groups of a user.
type GroupsContainingRequest struct {
	UserID string `json:"user_id"`
}

// GroupsContainingResponse holds the groups of a user.
type GroupsContainingResponse struct {
	Groups []domain.Membership `json:"groups"`
}

// MemberRequest adds or removes a member.
type MemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

// PolicyRequest changes the confirmation policy.
type PolicyRequest struct {
	GroupID              string `json:"group_id"`
	ConfirmationRequired bool   `json:"confirmation_required"`
}

// DeleteGroupRequest removes a group on behalf of UserID.
type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

// AckResponse acknowledges a write.
type AckResponse struct {
	Success bool `json:"success"`
}

func toGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{Group: g.ToMembership(), OwnerID: g.OwnerID}
}
