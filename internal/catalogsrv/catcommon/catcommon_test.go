package catcommon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	// Canonical UUID: typed form equals raw, no second lookup needed.
	r := ParseRef("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", r.Raw())
	_, retry := r.Typed()
	assert.False(t, retry)

	// UUID variant spelling normalizes to a different string, worth a
	// second lookup.
	r = ParseRef("6BA7B810-9DAD-11D1-80B4-00C04FD430C8")
	typed, retry := r.Typed()
	assert.True(t, retry)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", typed)

	// Legacy object id: literal only.
	r = ParseRef("5f8d04b2ab3c4e001c9d4a11")
	assert.Equal(t, "5f8d04b2ab3c4e001c9d4a11", r.Raw())
	_, retry = r.Typed()
	assert.False(t, retry)

	// Whitespace is trimmed, empty means zero.
	r = ParseRef("  abc  ")
	assert.Equal(t, "abc", r.Raw())
	assert.True(t, ParseRef("").IsZero())
	assert.True(t, ParseRef("   ").IsZero())
}

func TestNewRef(t *testing.T) {
	r := NewRef()
	assert.False(t, r.IsZero())
	_, retry := r.Typed()
	assert.False(t, retry)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	assert.True(t, VerifyPassword("correct horse battery staple", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
	assert.False(t, VerifyPassword("correct horse battery staple", "not-a-hash"))

	// Salts are random, two hashes of the same password differ.
	other, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
	assert.True(t, VerifyPassword("correct horse battery staple", other))
}
