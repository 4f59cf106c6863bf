package answer

import (
	"regexp"
	"strings"
)

// SizeNotFound is the single sentinel for input no rule could normalize. Both
// the sizing and restock flows use this same mapping.
const SizeNotFound = "not_found"

var numericSizeRe = regexp.MustCompile(`^\d{2}$`)

var sizeAliases = map[string]string{
	"xs": "XS", "extra small": "XS", "extra-small": "XS",
	"s": "S", "small": "S", "chica": "S", "pequeña": "S", "pequena": "S",
	"m": "M", "medium": "M", "mediana": "M",
	"l": "L", "large": "L", "grande": "L",
	"xl": "XL", "extra large": "XL", "extra-large": "XL",
	"xxl": "XXL", "2xl": "XXL", "doble xl": "XXL",
}

// NormalizeSize maps a free-text size mention onto a canonical label. Numeric
// European sizes (two digits) pass through as-is.
func NormalizeSize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "talla ")
	s = strings.TrimPrefix(s, "size ")
	s = strings.TrimSpace(s)

	if s == "" {
		return SizeNotFound
	}
	if canonical, ok := sizeAliases[s]; ok {
		return canonical
	}
	if numericSizeRe.MatchString(s) {
		return s
	}
	return SizeNotFound
}
