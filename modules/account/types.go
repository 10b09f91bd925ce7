package account

import (
	domain "github.com/example/lockin/domain/account"
)

// EnsureAccountRequest is the request for creating or renaming an account.
type EnsureAccountRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
}

// GetAccountRequest is the request for reading an account.
type GetAccountRequest struct {
	UserID string `json:"user_id"`
}

// AccountResponse wraps a single account.
type AccountResponse struct {
	Account domain.Account `json:"account"`
}

// IncrementRequest adds a completion to a user's stats.
type IncrementRequest struct {
	UserID  string `json:"user_id"`
	Minutes int    `json:"minutes"`
}

// IncrementResponse acknowledges an increment.
type IncrementResponse struct {
	Success bool `json:"success"`
}

// ListStatsRequest asks for the stats of several users.
type ListStatsRequest struct {
	UserIDs []string `json:"user_ids"`
}

// ListStatsResponse returns one entry per requested user.
type ListStatsResponse struct {
	Accounts []domain.Account `json:"accounts"`
}
