// Package match decides which requested process names appear in a raw
// process listing.
//
// The rules are substring heuristics over text, not process-table lookups,
// and carry known false positives and negatives:
//
//   - ContainsFold (Windows) matches a name anywhere in the listing, so a
//     name that is a substring of another running image also matches.
//   - BoundedToken (macOS, Linux) requires the name to follow a space and be
//     followed by one, or to follow a slash. A name at the very start of a
//     line is missed, and "/name" also matches a longer token with that
//     prefix.
package match

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deixis/procbridge/internal/platform"
)

// Rule reports whether name is considered present in listing.
type Rule func(listing, name string) bool

// ContainsFold is case-insensitive containment of name anywhere in listing.
func ContainsFold(listing, name string) bool {
	lower := cases.Lower(language.Und)
	return strings.Contains(lower.String(listing), lower.String(name))
}

// BoundedToken is containment of " name " or "/name", case-sensitive.
func BoundedToken(listing, name string) bool {
	return strings.Contains(listing, " "+name+" ") || strings.Contains(listing, "/"+name)
}

// RuleFor returns the rule used for kind's listing format, or nil when kind
// is unsupported.
func RuleFor(kind platform.Kind) Rule {
	switch kind {
	case platform.Windows:
		return ContainsFold
	case platform.MacOS, platform.Linux:
		return BoundedToken
	}
	return nil
}

// Names returns the requested names that rule finds in listing, in request
// order. Each name appears at most once and only names from requested are
// returned. The result is never nil.
func Names(listing string, requested []string, rule Rule) []string {
	found := make([]string, 0, len(requested))
	if rule == nil {
		return found
	}
	seen := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if rule(listing, name) {
			found = append(found, name)
		}
	}
	return found
}
