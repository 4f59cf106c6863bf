// Package sanitize neutralizes prompt-injection vectors in conversation text
// before it is embedded into an LLM prompt.
package sanitize

import (
	"regexp"
	"strings"
)

var systemPrefixRe = regexp.MustCompile(`(?i)^\s*system\s*:\s*`)

// Clean strips triple-backtick fences and any leading "system:" role-spoofing
// prefix, then trims. Applying Clean to already-clean text is a no-op.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "```", "")

	// Strip repeated spoofed prefixes so a single pass is idempotent.
	for {
		stripped := systemPrefixRe.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}

	return strings.TrimSpace(text)
}
