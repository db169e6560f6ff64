package models

import (
	"time"
)

// User carries the account record plus the single mutable pointer end users
// own: the currently selected college.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CollegeID    string    `db:"college_id" json:"collegeId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Projection returns the minimal user shape sent back to clients.
func (u *User) Projection() map[string]any {
	p := map[string]any{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	}
	if u.CollegeID != "" {
		p["collegeId"] = u.CollegeID
	}
	return p
}
