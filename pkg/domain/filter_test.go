package domain

import "testing"

func TestAllowedEmptyLists(t *testing.T) {
	f := New(Config{})

	urls := []string{
		"https://en.wikipedia.org/wiki/Cat",
		"http://example.com",
		"https://sub.domain.co.uk/path?q=1",
	}

	for _, u := range urls {
		if !f.Allowed(u) {
			t.Errorf("Allowed(%q) = false, want true with empty lists", u)
		}
	}
}

func TestAllowedList(t *testing.T) {
	f := New(Config{
		AllowedDomains: []string{"wikipedia.org"},
	})

	tests := []struct {
		url  string
		want bool
	}{
		{"https://en.wikipedia.org/wiki/Cat", true},
		{"https://wikipedia.org", true},
		// Substring matching admits hostnames that merely contain the
		// entry; preserved extension behavior.
		{"https://notwikipedia.org.evil.com", true},
		{"https://example.com", false},
		{"https://wikimedia.org", false},
	}

	for _, tt := range tests {
		if got := f.Allowed(tt.url); got != tt.want {
			t.Errorf("Allowed(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestExclusionsWinOverAllowList(t *testing.T) {
	f := New(Config{
		AllowedDomains:  []string{"wikipedia.org"},
		ExcludedDomains: []string{"en.wikipedia"},
	})

	if f.Allowed("https://en.wikipedia.org/wiki/Cat") {
		t.Error("excluded hostname admitted despite matching allow-list")
	}

	if !f.Allowed("https://de.wikipedia.org/wiki/Katze") {
		t.Error("non-excluded allow-listed hostname rejected")
	}
}

func TestExclusionsWithEmptyAllowList(t *testing.T) {
	f := New(Config{
		ExcludedDomains: []string{"ads."},
	})

	if f.Allowed("https://ads.example.com/banner") {
		t.Error("excluded hostname admitted")
	}
	if !f.Allowed("https://example.com") {
		t.Error("unrelated hostname rejected")
	}
}

func TestMalformedURLFailsClosed(t *testing.T) {
	f := New(Config{})

	bad := []string{
		"",
		"not a url",
		"://missing-scheme",
		"about:blank",
	}

	for _, u := range bad {
		if f.Allowed(u) {
			t.Errorf("Allowed(%q) = true, want false (fail-closed)", u)
		}
	}
}
