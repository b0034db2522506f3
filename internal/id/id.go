// Package id generates prefixed identifiers for Rootmarks records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for generated identifiers. Badge ids come from the catalog and
// user ids from the identity provider, so neither is generated here.
const (
	PrefixBook      = "book"
	PrefixPlantScan = "scan"
)

// Generate returns "prefix-<nanoid>", e.g. "book-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
