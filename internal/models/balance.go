package models

import "time"

// Balance represents the current point balance held by one user.
type Balance struct {
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"` // whole points, never negative
	UpdatedAt time.Time `json:"updated_at"`
}
