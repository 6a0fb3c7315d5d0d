package models

import "time"

// Project holds the header information shown above a WBS
type Project struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Owner    string `json:"owner" db:"owner"`
	Executor string `json:"executor" db:"executor"` // Team or contractor carrying out the work

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
