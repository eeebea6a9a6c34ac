package section

import "github.com/mx-space/landing/internal/models"

// EntryKind distinguishes hard-coded page sections from dynamic ones.
type EntryKind string

const (
	KindFixed   EntryKind = "fixed"
	KindDynamic EntryKind = "dynamic"
)

// FixedSection is a hard-coded landing page block. It is configured, not
// edited through the store.
type FixedSection struct {
	ID     string `json:"id"     yaml:"id"`
	Name   string `json:"name"   yaml:"name"`
	Anchor string `json:"anchor" yaml:"anchor"`
}

// DefaultFixedSections mirrors the stock landing page.
func DefaultFixedSections() []FixedSection {
	return []FixedSection{
		{ID: "hero", Name: "Hero", Anchor: "top"},
		{ID: "features", Name: "Features", Anchor: "features"},
		{ID: "charts", Name: "Insights", Anchor: "insights"},
		{ID: "testimonials", Name: "Testimonials", Anchor: "testimonials"},
		{ID: "newsletter", Name: "Newsletter", Anchor: "newsletter"},
	}
}

// Entry is one element of the full page sequence returned by Store.All.
type Entry struct {
	Kind     EntryKind       `json:"kind"`
	Position int             `json:"position"`
	Fixed    *FixedSection   `json:"fixed,omitempty"`
	Section  *models.Section `json:"section,omitempty"`
}
