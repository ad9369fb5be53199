// Package normalize holds the pure input-normalization rules for slugs,
// link URLs and lead emails. Nothing here touches the network or the
// database; callers decide what to do with the canonical values.
package normalize

import "strings"

// reservedSlugs are path segments the router owns. A page slug matching one
// of these would shadow an application route, so they are rejected outright.
var reservedSlugs = map[string]struct{}{
	"login":       {},
	"logout":      {},
	"register":    {},
	"dashboard":   {},
	"api":         {},
	"static":      {},
	"favicon.ico": {},
}

// Slug turns raw user input into a canonical URL-safe slug.
//
// Users paste all sorts of things into the slug field - full profile URLs,
// domains, names with spaces - so the pipeline is deliberately forgiving:
//
//  1. Trim whitespace and lowercase.
//  2. Strip a single leading "https://" or "http://".
//  3. Strip a leading "www.".
//  4. Keep only the first path segment (truncate at the first "/").
//  5. Replace "." with "-", then whitespace runs with "-".
//  6. Keep [a-z0-9-], map "_" to "-", silently drop everything else.
//  7. Collapse consecutive dashes and trim leading/trailing ones.
//
// The result is matched against the reserved-word set. Normalization is
// idempotent: Slug(Slug(x)) == Slug(x) for any accepted x.
//
// Uniqueness is NOT checked here - the caller does a best-effort lookup and
// the database UNIQUE constraint is the authoritative guard under races.
func Slug(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	// Strip protocol, at most one.
	if rest, ok := strings.CutPrefix(s, "https://"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "http://"); ok {
		s = rest
	}
	if rest, ok := strings.CutPrefix(s, "www."); ok {
		s = rest
	}

	// Keep only the first path segment.
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		s = s[:idx]
	}

	s = strings.ReplaceAll(s, ".", "-")
	s = strings.Join(strings.Fields(s), "-")

	// Filter to the allowed alphabet, collapsing dash runs as we go.
	var b strings.Builder
	b.Grow(len(s))
	prevDash := false
	for _, ch := range s {
		var c byte
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			c = byte(ch)
		case ch == '-' || ch == '_':
			c = '-'
		default:
			// Anything else is dropped silently.
			continue
		}
		if c == '-' {
			if prevDash {
				continue
			}
			prevDash = true
		} else {
			prevDash = false
		}
		b.WriteByte(c)
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "", ErrEmptySlug
	}
	if _, reserved := reservedSlugs[slug]; reserved {
		return "", ErrReservedSlug
	}
	return slug, nil
}

// URL canonicalizes a link target. Values already carrying an http(s) scheme
// pass through untouched; everything else gets "https://" prepended. No host
// validation happens on purpose - users may save links to hosts we cannot
// resolve, and a broken link is theirs to fix.
func URL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return "https://" + trimmed
}

// Email performs the minimal sanity check applied to captured leads.
func Email(raw string) error {
	if !strings.Contains(raw, "@") {
		return ErrInvalidEmail
	}
	return nil
}
