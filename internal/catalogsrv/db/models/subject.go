package models

import (
	"time"

	"github.com/jackc/pgtype"
)

// Subject model definition
type Subject struct {
	ID         string       `db:"id" json:"id"`
	SemesterID string       `db:"semester_id" json:"semesterId"`
	Name       string       `db:"name" json:"name"`
	Code       string       `db:"code" json:"code,omitempty"`
	Info       pgtype.JSONB `db:"info" json:"-"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updatedAt"`
}
