package models

import (
	"time"

	"github.com/jackc/pgtype"
)

// SourceKind says which backend holds a unit's document.
type SourceKind string

const (
	// SourceNone marks a unit with no document attached yet.
	SourceNone SourceKind = ""
	// SourceLocal references a path under the configured local root.
	SourceLocal SourceKind = "local"
	// SourceRemote references an object key in the configured bucket.
	SourceRemote SourceKind = "remote"
)

// Unit is the leaf of the catalog tree. SourceKind plus SourceRef describe
// where its document lives; delivery dispatches on the kind rather than on
// which fields happen to be populated. The reference itself never leaves
// the server: clients fetch the document through the delivery endpoint.
type Unit struct {
	ID          string       `db:"id" json:"id"`
	SubjectID   string       `db:"subject_id" json:"subjectId"`
	Name        string       `db:"name" json:"name"`
	Number      int          `db:"number" json:"number"`
	SourceKind  SourceKind   `db:"source_kind" json:"sourceKind,omitempty"`
	SourceRef   string       `db:"source_ref" json:"-"`
	Description string       `db:"description" json:"description,omitempty"`
	Info        pgtype.JSONB `db:"info" json:"-"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// HasDocument reports whether the unit has a document reference configured.
func (u *Unit) HasDocument() bool {
	return u.SourceKind != SourceNone && u.SourceRef != ""
}
