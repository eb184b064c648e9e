package models

import (
	"strings"
	"time"
)

// Club represents a tracked football club. The identity key is the only
// deduplication handle: clubs are created on first encounter of a key and
// every later import overwrites display name, country and level
// (last writer wins).
type Club struct {
	ID          int64     `db:"id"`
	IdentityKey string    `db:"identity_key"`
	DisplayName string    `db:"display_name"`
	Country     string    `db:"country"`
	Level       int       `db:"level"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ClubIdentityKey derives the stable identity key from a source club name.
// Trimming surrounding whitespace is the only normalization applied, so
// names differing by case or internal punctuation create distinct clubs.
// Known gap in the source data model; do not tighten without confirming
// intended behavior upstream.
func ClubIdentityKey(name string) string {
	return strings.TrimSpace(name)
}
