package layout

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a stable BLAKE3 digest of the layout's keys.
// Layouts with equal keys share a fingerprint regardless of file formatting.
func Fingerprint(l Layout) string {
	var b strings.Builder
	for i, layer := range l.Layers {
		if i > 0 {
			b.WriteByte('\n')
		}
		for pos, k := range layer {
			if pos > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(k.Token())
		}
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ShortFingerprint is the first 12 hex characters of Fingerprint.
func ShortFingerprint(l Layout) string {
	return Fingerprint(l)[:12]
}
