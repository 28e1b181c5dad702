package history

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint hashes the configure and build argv. Two builds with the same
// fingerprint asked cmake for exactly the same thing.
func Fingerprint(configure, build []string) string {
	h := sha256.New()

	// NUL never appears in argv, so joining on it is unambiguous
	h.Write([]byte(strings.Join(configure, "\x00")))
	h.Write([]byte{'\n'})
	h.Write([]byte(strings.Join(build, "\x00")))

	return hex.EncodeToString(h.Sum(nil))
}
