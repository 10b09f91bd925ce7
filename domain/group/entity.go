// Package group defines friend groups and their membership.
package group

import "time"

// Group is a set of users ranked against each other every week.
type Group struct {
	ID                   string    `gorm:"primarykey;size:36" json:"groupId"`
	OwnerID              string    `gorm:"size:64;not null" json:"ownerId"`
	Name                 string    `gorm:"size:100;not null" json:"name"`
	ConfirmationRequired bool      `gorm:"not null;default:false" json:"confirmationRequired"`
	Members              []Member  `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// TableName returns the table name for Group.
func (Group) TableName() string {
	return "groups"
}

// MemberIDs returns the user ids of the loaded members.
func (g Group) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// Member links a user to a group.
type Member struct {
	GroupID   string    `gorm:"primarykey;size:36"`
	UserID    string    `gorm:"primarykey;size:64;index"`
	CreatedAt time.Time
}

// TableName returns the table name for Member.
func (Member) TableName() string {
	return "group_members"
}

// Membership is the view of a group other modules consume.
type Membership struct {
	GroupID              string   `json:"groupId"`
	Name                 string   `json:"name"`
	ConfirmationRequired bool     `json:"confirmationRequired"`
	Members              []string `json:"members"`
}

// ToMembership projects a loaded group.
func (g Group) ToMembership() Membership {
	return Membership{
		GroupID:              g.ID,
		Name:                 g.Name,
		ConfirmationRequired: g.ConfirmationRequired,
		Members:              g.MemberIDs(),
	}
}
