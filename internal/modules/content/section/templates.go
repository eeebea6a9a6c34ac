package section

import (
	"fmt"

	"github.com/mx-space/landing/internal/models"
)

// Template is a static catalog entry describing a layout and its defaults.
type Template struct {
	Layout         models.Layout         `json:"layout"`
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	Icon           string                `json:"icon"`
	DefaultFields  models.Fields         `json:"defaultFields"`
	DefaultStyling models.SectionStyling `json:"defaultStyling"`
}

func (t Template) clone() Template {
	out := t
	out.DefaultFields = t.DefaultFields.Clone()
	out.DefaultStyling = t.DefaultStyling.Clone()
	return out
}

var descriptors = []struct {
	layout      models.Layout
	name        string
	description string
	icon        string
}{
	{models.LayoutHero, "Hero", "Large headline with call-to-action buttons", "layout-template"},
	{models.LayoutBento, "Bento", "Asymmetric grid of feature cards", "layout-dashboard"},
	{models.LayoutGrid, "Grid", "Evenly sized cards in 2-4 columns", "layout-grid"},
	{models.LayoutColumns, "Columns", "Side-by-side rich text columns", "columns"},
	{models.LayoutDivider, "Divider", "Visual separator between sections", "minus"},
	{models.LayoutImage, "Image", "Single full-width or inset image", "image"},
	{models.LayoutCode, "Code", "Syntax-highlighted code snippet", "code"},
	{models.LayoutGallery, "Gallery", "Image gallery with optional lightbox", "images"},
	{models.LayoutForm, "Form", "Contact or signup form", "clipboard-list"},
}

var catalog = buildCatalog()

func buildCatalog() []Template {
	out := make([]Template, 0, len(descriptors))
	for _, d := range descriptors {
		def, ok := models.DefaultLayoutFields(d.layout)
		if !ok {
			panic(fmt.Sprintf("section: no default fields for layout %q", d.layout))
		}
		fields, err := models.ToFields(def)
		if err != nil {
			panic(fmt.Sprintf("section: encode default fields for %q: %v", d.layout, err))
		}
		out = append(out, Template{
			Layout:         d.layout,
			Name:           d.name,
			Description:    d.description,
			Icon:           d.icon,
			DefaultFields:  fields,
			DefaultStyling: DefaultStyling(d.layout),
		})
	}
	return out
}

// ListTemplates returns the catalog in its fixed order. Callers receive
// copies and cannot alter the catalog.
func ListTemplates() []Template {
	out := make([]Template, len(catalog))
	for i, t := range catalog {
		out[i] = t.clone()
	}
	return out
}

// TemplateFor looks up the catalog entry for layout.
func TemplateFor(layout models.Layout) (Template, bool) {
	for _, t := range catalog {
		if t.Layout == layout {
			return t.clone(), true
		}
	}
	return Template{}, false
}

// DefaultStyling is the fallback styling a new section of layout starts with.
func DefaultStyling(layout models.Layout) models.SectionStyling {
	s := models.SectionStyling{
		Background:       "white",
		TextColor:        models.TextColorAuto,
		Padding:          models.PaddingMedium,
		CardBorderRadius: 16,
		CardOpacity:      100,
	}
	switch layout {
	case models.LayoutForm:
		s.Padding = models.PaddingLarge
	case models.LayoutDivider:
		s.Padding = models.PaddingSmall
	}
	return s
}
