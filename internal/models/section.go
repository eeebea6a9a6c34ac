package models

import (
	"fmt"
	"strings"
	"time"
)

// Layout identifies which template, field schema and renderer a section uses.
type Layout string

const (
	LayoutHero    Layout = "hero"
	LayoutBento   Layout = "bento"
	LayoutGrid    Layout = "grid"
	LayoutColumns Layout = "columns"
	LayoutDivider Layout = "divider"
	LayoutImage   Layout = "image"
	LayoutCode    Layout = "code"
	LayoutGallery Layout = "gallery"
	LayoutForm    Layout = "form"
)

// Layouts lists every known layout in catalog order.
var Layouts = []Layout{
	LayoutHero, LayoutBento, LayoutGrid, LayoutColumns, LayoutDivider,
	LayoutImage, LayoutCode, LayoutGallery, LayoutForm,
}

// Valid reports whether l is one of the known layouts.
func (l Layout) Valid() bool {
	for _, known := range Layouts {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLayout normalizes user input into a Layout.
func ParseLayout(raw string) (Layout, bool) {
	l := Layout(strings.ToLower(strings.TrimSpace(raw)))
	return l, l.Valid()
}

// Fields is the open per-section content mapping. Values must be JSON
// serializable; after a persistence round trip numbers are float64, lists are
// []any and objects are map[string]any.
type Fields map[string]any

// Clone returns a deep copy of f.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Fields:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item).(map[string]any)
		}
		return out
	default:
		return v
	}
}

// TextColor selects the foreground theme of a section.
type TextColor string

const (
	TextColorAuto  TextColor = "auto"
	TextColorLight TextColor = "light"
	TextColorDark  TextColor = "dark"
)

// Padding selects the vertical spacing of a section.
type Padding string

const (
	PaddingNone   Padding = "none"
	PaddingSmall  Padding = "small"
	PaddingMedium Padding = "medium"
	PaddingLarge  Padding = "large"
)

// SectionStyling is the per-section visual configuration. It is always
// replaced as a whole.
type SectionStyling struct {
	Background       string    `json:"background"`
	BackgroundImage  string    `json:"backgroundImage,omitempty"`
	ImageOpacity     *int      `json:"imageOpacity,omitempty"`
	Parallax         bool      `json:"parallax,omitempty"`
	TextColor        TextColor `json:"textColor"`
	Padding          Padding   `json:"padding"`
	CardBorderRadius int       `json:"cardBorderRadius"`
	CardOpacity      int       `json:"cardOpacity"`
}

// Validate checks enum members and numeric ranges.
func (s SectionStyling) Validate() error {
	if strings.TrimSpace(s.Background) == "" {
		return fmt.Errorf("background is required")
	}
	switch s.TextColor {
	case TextColorAuto, TextColorLight, TextColorDark:
	default:
		return fmt.Errorf("textColor must be one of auto, light, dark; got %q", s.TextColor)
	}
	switch s.Padding {
	case PaddingNone, PaddingSmall, PaddingMedium, PaddingLarge:
	default:
		return fmt.Errorf("padding must be one of none, small, medium, large; got %q", s.Padding)
	}
	if s.ImageOpacity != nil && (*s.ImageOpacity < 0 || *s.ImageOpacity > 100) {
		return fmt.Errorf("imageOpacity must be within 0-100; got %d", *s.ImageOpacity)
	}
	if s.CardOpacity < 0 || s.CardOpacity > 100 {
		return fmt.Errorf("cardOpacity must be within 0-100; got %d", s.CardOpacity)
	}
	if s.CardBorderRadius < 0 {
		return fmt.Errorf("cardBorderRadius must not be negative; got %d", s.CardBorderRadius)
	}
	return nil
}

// Clone copies the styling record including the optional pointer.
func (s SectionStyling) Clone() SectionStyling {
	out := s
	if s.ImageOpacity != nil {
		v := *s.ImageOpacity
		out.ImageOpacity = &v
	}
	return out
}

// Section is one dynamic, user-configured block of the landing page. Its
// position is implied by its index in the store.
type Section struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Layout    Layout         `json:"layout"`
	IsVisible bool           `json:"isVisible"`
	Fields    Fields         `json:"fields"`
	Styling   SectionStyling `json:"styling"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Clone returns a deep copy that shares no mutable state with s.
func (s Section) Clone() Section {
	out := s
	out.Fields = s.Fields.Clone()
	out.Styling = s.Styling.Clone()
	return out
}
