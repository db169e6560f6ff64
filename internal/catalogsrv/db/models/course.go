package models

import (
	"time"

	"github.com/jackc/pgtype"
)

// Course model definition
type Course struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Code      string       `db:"code" json:"code,omitempty"`
	CollegeID string       `db:"college_id" json:"collegeId"`
	Info      pgtype.JSONB `db:"info" json:"-"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}
