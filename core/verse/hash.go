package verse

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash computes the BLAKE3-256 digest of canonical text as a hex string.
// Identical canonical text always hashes identically, which is what the
// writer relies on to detect no-op re-ingestion.
func Hash(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
