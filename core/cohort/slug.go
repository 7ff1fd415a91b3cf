package cohort

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugStripRegex  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRegex  = regexp.MustCompile(`\s+`)
	slugHyphenRegex = regexp.MustCompile(`-+`)
)

// MakeSlug derives a URL-safe slug from a human-entered name: lowercased,
// trimmed, stripped of anything outside [a-z0-9 space hyphen], whitespace runs
// and hyphen runs collapsed to a single hyphen. The result may be empty when
// the name is all punctuation; callers must fall back (see slugBase).
func MakeSlug(name string) string {
	s := strings.TrimSpace(strings.ToLower(name))
	s = slugStripRegex.ReplaceAllString(s, "")
	s = slugSpaceRegex.ReplaceAllString(s, "-")
	s = slugHyphenRegex.ReplaceAllString(s, "-")
	return s
}

// slugBase returns the base slug for a name, substituting a random non-empty
// base when the name normalizes to nothing.
func slugBase(name string) string {
	if base := MakeSlug(name); base != "" {
		return base
	}
	return "cohort-" + uuid.New().String()[:8]
}

// slugCandidate returns the nth allocation candidate for a base slug:
// the base itself first, then base-2, base-3, ...
func slugCandidate(base string, counter int) string {
	if counter < 2 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, counter)
}
