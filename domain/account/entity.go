// Package account holds the per-user aggregate completion stats.
package account

import "time"

// Account is a user's running totals. The confirmed variants only count
// completions a peer has attested to.
type Account struct {
	UserID                    string    `gorm:"primarykey;size:64" json:"userId"`
	Name                      string    `gorm:"size:100" json:"name,omitempty"`
	TasksCompleted            int       `gorm:"not null;default:0" json:"tasksCompleted"`
	MinutesCompleted          int       `gorm:"not null;default:0" json:"minutesCompleted"`
	ConfirmedTasksCompleted   int       `gorm:"not null;default:0" json:"confirmedTasksCompleted"`
	ConfirmedMinutesCompleted int       `gorm:"not null;default:0" json:"confirmedMinutesCompleted"`
	CreatedAt                 time.Time `json:"createdAt"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

// TableName returns the table name for Account.
func (Account) TableName() string {
	return "accounts"
}

// Totals returns the task count and minutes for the requested variant.
func (a Account) Totals(confirmed bool) (tasks, minutes int) {
	if confirmed {
		return a.ConfirmedTasksCompleted, a.ConfirmedMinutesCompleted
	}
	return a.TasksCompleted, a.MinutesCompleted
}
