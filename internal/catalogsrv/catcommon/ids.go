package catcommon

import (
	"strings"

	"github.com/google/uuid"
)

// Ref identifies a catalog entity by the identifier string a caller handed
// us. Stored identifiers come in two historical encodings: canonical UUID
// strings written by this service, and opaque object ids imported from the
// previous deployment. Lookups try the literal value first and fall back to
// the normalized UUID form only when the literal matches nothing, so rows
// written under either encoding stay reachable.
type Ref struct {
	raw   string
	typed string
}

// ParseRef builds a Ref from a raw identifier string. The typed form is
// populated only when the string parses as a UUID.
func ParseRef(s string) Ref {
	raw := strings.TrimSpace(s)
	r := Ref{raw: raw}
	if u, err := uuid.Parse(raw); err == nil {
		r.typed = u.String()
	}
	return r
}

// NewRef returns a Ref for a freshly generated canonical identifier.
func NewRef() Ref {
	id := uuid.NewString()
	return Ref{raw: id, typed: id}
}

// Raw returns the literal identifier as received.
func (r Ref) Raw() string {
	return r.raw
}

// Typed returns the normalized UUID form and whether it is worth a second
// lookup, i.e. it exists and differs from the raw form.
func (r Ref) Typed() (string, bool) {
	return r.typed, r.typed != "" && r.typed != r.raw
}

// IsZero reports whether the Ref carries no identifier at all.
func (r Ref) IsZero() bool {
	return r.raw == ""
}

func (r Ref) String() string {
	return r.raw
}

// NewID generates a canonical identifier for a new catalog row.
func NewID() string {
	return uuid.NewString()
}
