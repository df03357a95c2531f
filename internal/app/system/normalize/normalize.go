// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email returns the stored and compared form of an email: trimmed and
// folded (lowercase, diacritics stripped).
func Email(s string) string {
	return text.Fold(strings.TrimSpace(s))
}

// Name trims a display name and collapses internal runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
