// Package domain decides whether a navigated-to URL is eligible for
// tracking, given an allow-list and a deny-list of domain strings.
//
// Matching is substring containment against the hostname, not proper
// suffix matching: "wikipedia.org" matches en.wikipedia.org but also
// notwikipedia.org.evil.com. This looseness is inherited from the
// extension and preserved deliberately; tightening it would silently
// change which visits get recorded.
package domain

import (
	"net/url"
	"strings"
)

// Filter gates URLs for the tracking engine.
type Filter interface {
	// Allowed reports whether the URL's hostname passes the deny-list
	// and allow-list. Unparseable URLs are rejected (fail-closed).
	Allowed(rawURL string) bool
}

// Config contains filter configuration.
type Config struct {
	// AllowedDomains admits hostnames containing any entry.
	// Empty means allow all.
	AllowedDomains []string

	// ExcludedDomains rejects hostnames containing any entry,
	// checked before the allow-list.
	ExcludedDomains []string
}

// filter implements the Filter interface.
type filter struct {
	allowed  []string
	excluded []string
}

// New creates a filter from the given domain lists.
func New(cfg Config) Filter {
	return &filter{
		allowed:  cfg.AllowedDomains,
		excluded: cfg.ExcludedDomains,
	}
}

// Allowed implements Filter.Allowed.
func (f *filter) Allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	hostname := u.Hostname()
	if hostname == "" {
		return false
	}

	// Exclusions win regardless of the allow-list.
	for _, d := range f.excluded {
		if strings.Contains(hostname, d) {
			return false
		}
	}

	// Empty allow-list admits everything not excluded.
	if len(f.allowed) == 0 {
		return true
	}

	for _, d := range f.allowed {
		if strings.Contains(hostname, d) {
			return true
		}
	}

	return false
}
