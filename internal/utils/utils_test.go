package utils_test

import (
	"testing"

	"privyscope/internal/utils"
)

func TestApproxSiteRoot(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"example.com", "example.com"},
		{"a.b.example.com", "example.com"},
		{"shop.example.co.uk", "example.co.uk"},
		{"www.example.co.in", "example.co.in"},
		{"analytics.example.com", "example.com"},
		{"Example.COM", "example.com"},
		{"localhost", "localhost"},
		// "org" is three characters, so the heuristic keeps three labels.
		{"sub.example.org.uk", "example.org.uk"},
	}
	for _, c := range cases {
		if got := utils.ApproxSiteRoot(c.host); got != c.want {
			t.Errorf("ApproxSiteRoot(%q) = %q, want %q", c.host, got, c.want)
		}
	}
}

func TestSameSiteString(t *testing.T) {
	u, err := utils.NewURLTools("https://shop.example.com/checkout")
	if err != nil {
		t.Fatalf("NewURLTools: %v", err)
	}

	same, err := u.SameSiteString("https://www.example.com/privacy")
	if err != nil {
		t.Fatalf("SameSiteString: %v", err)
	}
	if !same {
		t.Errorf("expected cross-subdomain URLs to be same-site")
	}

	same, err = u.SameSiteString("https://tracker.adnetwork.com/p")
	if err != nil {
		t.Fatalf("SameSiteString: %v", err)
	}
	if same {
		t.Errorf("expected different roots to not be same-site")
	}
}

func TestCanonicalizeDeterministic(t *testing.T) {
	opts := utils.CanonicalizeOptions{
		DefaultScheme:      "https",
		StripTrailingSlash: true,
		DropTrackingParams: true,
	}

	a, err := utils.Canonicalize("HTTPS://Example.COM:443/privacy/?utm_source=x&b=2&a=1#top", opts)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	b, err := utils.Canonicalize("https://example.com/privacy?a=1&b=2", opts)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if a != b {
		t.Errorf("expected canonical forms to match: %q vs %q", a, b)
	}
}

func TestCanonicalizeRejectsEmptyAndHostless(t *testing.T) {
	if _, err := utils.Canonicalize("", utils.CanonicalizeOptions{}); err == nil {
		t.Errorf("expected error for empty url")
	}
	if _, err := utils.Canonicalize("/relative/path", utils.CanonicalizeOptions{}); err == nil {
		t.Errorf("expected error for url without host")
	}
}
