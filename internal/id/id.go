// Package id derives stable transaction identifiers. IDs are content-derived
// (UUIDv5 over a fingerprint of the transaction's identity fields) so that
// re-running the same input always reproduces the same IDs, with no time or
// randomness involved.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// namespace scopes transaction IDs; UUIDs derived here never collide with
// UUIDs derived under another namespace.
var namespace = uuid.MustParse("9f2c1e64-5a3d-4c6b-8e21-7b4a0d9c3f55")

// ForFingerprint returns the ID for a transaction identity fingerprint.
// occurrence disambiguates byte-identical rows within one batch: the first
// occurrence is 0, the next 1, and so on, keeping IDs unique while staying
// deterministic for a given input order.
func ForFingerprint(fingerprint string, occurrence int) string {
	if occurrence > 0 {
		fingerprint = fmt.Sprintf("%s#%d", fingerprint, occurrence)
	}
	return uuid.NewSHA1(namespace, []byte(fingerprint)).String()
}
