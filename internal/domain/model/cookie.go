// Package model contains the domain types shared across promowatch.
package model

import (
	"fmt"
	"strings"
	"time"
)

// CriticalCookies are the cookie names the storefront requires for any
// authenticated call. A bundle missing one of these cannot be used.
var CriticalCookies = []string{"EPIC_SSO", "EPIC_BEARER_TOKEN"}

// refreshWindow is how close to expiry a critical cookie may get before
// the bundle is reported as needing a refresh.
const refreshWindow = 7 * 24 * time.Hour

// Cookie is a single entry of a persisted credential bundle. The field
// tags match the JSON interchange format produced by the browser
// extraction tooling.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Expires  int64  `json:"expires"` // Epoch seconds; <= 0 for session cookies.
	HTTPOnly bool   `json:"httpOnly"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"sameSite"`
}

// IsSession reports whether the cookie carries no expiry (a session cookie).
func (c Cookie) IsSession() bool {
	return c.Expires <= 0
}

// ExpiresAt returns the cookie's expiry time. Only meaningful when
// IsSession is false.
func (c Cookie) ExpiresAt() time.Time {
	return time.Unix(c.Expires, 0)
}

// CredentialBundle is an ordered set of session cookies uniquely keyed by
// (domain, name). It is created by loading from the cookie store or by
// importing a browser export, and is only ever mutated by full replacement.
type CredentialBundle struct {
	Cookies []Cookie
}

// Get returns the first cookie with the given name.
func (b *CredentialBundle) Get(name string) (Cookie, bool) {
	for _, c := range b.Cookies {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

// BearerToken returns the token used for the Authorization header. The
// EG1 token is preferred; the plain bearer-token cookie is the fallback.
func (b *CredentialBundle) BearerToken() string {
	if c, ok := b.Get("EPIC_EG1"); ok {
		return c.Value
	}
	if c, ok := b.Get("EPIC_BEARER_TOKEN"); ok {
		return c.Value
	}
	return ""
}

// Validate checks the bundle for completeness and freshness at the given
// instant. It fails when a critical cookie is absent or when any
// expiry-bearing cookie has already elapsed. Session cookies never fail
// validation on expiry grounds.
func (b *CredentialBundle) Validate(now time.Time) (bool, string) {
	if b == nil || len(b.Cookies) == 0 {
		return false, "no cookies in bundle"
	}

	var missing []string
	for _, name := range CriticalCookies {
		if _, ok := b.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return false, "missing critical cookies: " + strings.Join(missing, ", ")
	}

	var expired []string
	for _, c := range b.Cookies {
		if !c.IsSession() && c.ExpiresAt().Before(now) {
			expired = append(expired, c.Name)
		}
	}
	if len(expired) > 0 {
		// Cap the list; browser exports can carry dozens of stale entries.
		if len(expired) > 5 {
			expired = expired[:5]
		}
		return false, "expired cookies: " + strings.Join(expired, ", ")
	}

	return true, "cookies are valid"
}

// NeedsRefresh reports whether the bundle should be re-extracted: either
// it is invalid, or a critical expiry-bearing cookie has fewer than seven
// days remaining.
func (b *CredentialBundle) NeedsRefresh(now time.Time) (bool, string) {
	valid, reason := b.Validate(now)
	if !valid {
		return true, reason
	}

	for _, name := range CriticalCookies {
		c, ok := b.Get(name)
		if !ok || c.IsSession() {
			continue
		}
		if remaining := c.ExpiresAt().Sub(now); remaining < refreshWindow {
			days := int(remaining.Hours() / 24)
			return true, fmt.Sprintf("%s expires in %d days", name, days)
		}
	}

	return false, "cookies are fresh"
}

// CookieStatus describes one critical cookie for status reporting.
type CookieStatus struct {
	Name     string
	Found    bool
	Session  bool
	DaysLeft int // Meaningful only when Found and not Session.
}

// CriticalStatus summarizes the critical cookies for display by the
// cookie utility.
func (b *CredentialBundle) CriticalStatus(now time.Time) []CookieStatus {
	statuses := make([]CookieStatus, 0, len(CriticalCookies))
	for _, name := range CriticalCookies {
		c, ok := b.Get(name)
		status := CookieStatus{Name: name, Found: ok}
		if ok && !c.IsSession() {
			status.DaysLeft = int(c.ExpiresAt().Sub(now).Hours() / 24)
		} else if ok {
			status.Session = true
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Domains returns the distinct cookie domains in first-seen order.
func (b *CredentialBundle) Domains() []string {
	seen := make(map[string]struct{}, len(b.Cookies))
	var domains []string
	for _, c := range b.Cookies {
		if _, ok := seen[c.Domain]; ok {
			continue
		}
		seen[c.Domain] = struct{}{}
		domains = append(domains, c.Domain)
	}
	return domains
}
