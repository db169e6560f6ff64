package models

import (
	"time"

	"github.com/jackc/pgtype"
)

/*
   Column     |          Type           | Collation | Nullable |  Default
--------------+-------------------------+-----------+----------+-----------
 id           | text                    |           | not null |
 name         | character varying(512)  |           | not null |
 info         | jsonb                   |           |          |
 created_at   | timestamptz             |           | not null | now()
 updated_at   | timestamptz             |           | not null | now()
*/

// College is the root of the catalog tree. Identifiers are stored as text:
// rows created by this service carry canonical UUID strings, rows imported
// from the previous deployment may carry its object ids.
type College struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Info      pgtype.JSONB `db:"info" json:"-"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}
