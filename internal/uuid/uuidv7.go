// Package uuid generates the v7 identifiers used as primary keys across the
// ledger tables. v7 ids embed a millisecond timestamp, so expense and
// invitation rows sort by creation time without a separate sequence column.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a fresh UUIDv7 in canonical string form. If v7 generation
// fails it falls back to a random v4 id; time ordering is lost for that row
// but uniqueness is kept.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates s as a UUID and returns its canonical lowercase form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}
