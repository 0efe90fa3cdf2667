package content

import (
	"strings"

	"golang.org/x/mod/semver"
)

// canonicalVersion adds the "v" prefix semver expects.
func canonicalVersion(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// ValidVersion reports whether v is a semantic version, with or without "v".
func ValidVersion(v string) bool {
	return v != "" && semver.IsValid(canonicalVersion(v))
}

// CompareVersion returns -1, 0 or +1 comparing catalogue versions a and b.
// Invalid versions sort before valid ones.
func CompareVersion(a, b string) int {
	return semver.Compare(canonicalVersion(a), canonicalVersion(b))
}
