package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent case-folds an identifier and strips separators, so that
// "order_id", "orderId" and "OrderID" compare equal.
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}
