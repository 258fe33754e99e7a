package models

import "time"

// Student represents an enrolled learner.
type Student struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	RollNumber string    `db:"roll_number" json:"roll_number"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter scopes listing queries.
type StudentFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
