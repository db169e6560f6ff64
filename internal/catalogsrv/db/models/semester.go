package models

import (
	"fmt"
	"time"

	"github.com/jackc/pgtype"
)

// Semester model definition. CollegeID is the legacy parent reference kept
// for rows created before semesters were scoped to courses; uniqueness is
// on (course_id, number) only.
type Semester struct {
	ID        string       `db:"id" json:"id"`
	CollegeID string       `db:"college_id" json:"collegeId,omitempty"`
	CourseID  string       `db:"course_id" json:"courseId"`
	Number    int          `db:"number" json:"number"`
	Name      string       `db:"name" json:"name"`
	Info      pgtype.JSONB `db:"info" json:"-"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

// DisplayName returns the semester name, defaulting to "Semester <number>"
// when no explicit name was stored.
func (s *Semester) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("Semester %d", s.Number)
}
