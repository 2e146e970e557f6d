package model

import "strings"

// Outlet is a known publication source, identified by its canonical domain.
type Outlet struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// DomainKey derives the lookup key for an outlet URL: lower-cased, scheme
// stripped, leading "www." stripped, trailing slashes removed.
// Not guaranteed unique across raw URL variants.
func DomainKey(rawURL string) string {
	key := strings.ToLower(strings.TrimSpace(rawURL))
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.TrimPrefix(key, "www.")
	return strings.TrimRight(key, "/")
}
