// Package model defines the domain types shared across the collection pipeline.
package model

// Organization is a tracked organization whose media coverage we collect.
// Read-only input for the pipeline; managed elsewhere.
type Organization struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Slug string  `json:"slug"`
	EIN  *string `json:"ein,omitempty"`
}

// HasEIN reports whether the organization carries a tax registration
// identifier. Organizations with an EIN are prioritized during collection
// since they are more likely to have press coverage.
func (o Organization) HasEIN() bool {
	return o.EIN != nil && *o.EIN != ""
}
