package models

import (
	"encoding/json"
	"reflect"
	"strings"
)

// LayoutFields is the typed view of a section's field mapping. Exactly one
// record type exists per layout.
type LayoutFields interface {
	Layout() Layout
}

type HeroFields struct {
	Title               string `json:"title"`
	Subtitle            string `json:"subtitle"`
	Description         string `json:"description"`
	PrimaryButtonText   string `json:"primaryButtonText"`
	PrimaryButtonLink   string `json:"primaryButtonLink"`
	SecondaryButtonText string `json:"secondaryButtonText"`
	SecondaryButtonLink string `json:"secondaryButtonLink"`
	Image               string `json:"image"`
	Alignment           string `json:"alignment"`
}

func (HeroFields) Layout() Layout { return LayoutHero }

type BentoItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Image       string `json:"image"`
	Size        string `json:"size"`
	Link        string `json:"link"`
}

type BentoFields struct {
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	Items    []BentoItem `json:"items"`
}

func (BentoFields) Layout() Layout { return LayoutBento }

type GridItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Image       string `json:"image"`
	Link        string `json:"link"`
}

type GridFields struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Columns  int        `json:"columns"`
	Items    []GridItem `json:"items"`
}

func (GridFields) Layout() Layout { return LayoutGrid }

type Column struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

type ColumnsFields struct {
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
}

func (ColumnsFields) Layout() Layout { return LayoutColumns }

type DividerFields struct {
	Style  string `json:"style"`
	Height int    `json:"height"`
	Color  string `json:"color"`
	Label  string `json:"label"`
}

func (DividerFields) Layout() Layout { return LayoutDivider }

type ImageFields struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
	Width   string `json:"width"`
	Link    string `json:"link"`
}

func (ImageFields) Layout() Layout { return LayoutImage }

type CodeFields struct {
	Title           string `json:"title"`
	Language        string `json:"language"`
	Code            string `json:"code"`
	ShowLineNumbers bool   `json:"showLineNumbers"`
	Caption         string `json:"caption"`
}

func (CodeFields) Layout() Layout { return LayoutCode }

type GalleryImage struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type GalleryFields struct {
	Title    string         `json:"title"`
	Columns  int            `json:"columns"`
	Lightbox bool           `json:"lightbox"`
	Images   []GalleryImage `json:"images"`
}

func (GalleryFields) Layout() Layout { return LayoutGallery }

type FormField struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Placeholder string   `json:"placeholder"`
	Required    bool     `json:"required"`
	Options     []string `json:"options"`
}

type FormFields struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	SubmitText     string      `json:"submitText"`
	SuccessMessage string      `json:"successMessage"`
	Action         string      `json:"action"`
	Fields         []FormField `json:"fields"`
}

func (FormFields) Layout() Layout { return LayoutForm }

func DefaultHeroFields() *HeroFields {
	return &HeroFields{
		Title:               "Build something people remember",
		Subtitle:            "Launch faster with a page you can edit in minutes",
		Description:         "Describe what makes your product different. **Markdown** is supported.",
		PrimaryButtonText:   "Get started",
		PrimaryButtonLink:   "#contact",
		SecondaryButtonText: "Learn more",
		SecondaryButtonLink: "#features",
		Alignment:           "center",
	}
}

func DefaultBentoFields() *BentoFields {
	return &BentoFields{
		Title:    "Everything in one place",
		Subtitle: "A quick tour of what you get",
		Items: []BentoItem{
			{Title: "Fast setup", Description: "Go live the same day.", Icon: "zap", Size: "large"},
			{Title: "Analytics", Description: "Know what works.", Icon: "chart", Size: "small"},
			{Title: "Integrations", Description: "Plug into your stack.", Icon: "plug", Size: "small"},
			{Title: "Support", Description: "Humans, around the clock.", Icon: "heart", Size: "wide"},
		},
	}
}

func DefaultGridFields() *GridFields {
	return &GridFields{
		Title:    "Features",
		Subtitle: "Why teams choose us",
		Columns:  3,
		Items: []GridItem{
			{Title: "Reliable", Description: "Built on proven infrastructure.", Icon: "shield"},
			{Title: "Flexible", Description: "Adapts to the way you work.", Icon: "layers"},
			{Title: "Secure", Description: "Your data stays yours.", Icon: "lock"},
		},
	}
}

func DefaultColumnsFields() *ColumnsFields {
	return &ColumnsFields{
		Title: "How it works",
		Columns: []Column{
			{Title: "Plan", Content: "Decide what the page should say."},
			{Title: "Build", Content: "Drop in sections and fill them in."},
		},
	}
}

func DefaultDividerFields() *DividerFields {
	return &DividerFields{Style: "line", Height: 1, Color: "gray-200"}
}

func DefaultImageFields() *ImageFields {
	return &ImageFields{
		Src:   "https://images.unsplash.com/photo-1498050108023-c5249f4df085",
		Alt:   "Laptop on a desk",
		Width: "wide",
	}
}

func DefaultCodeFields() *CodeFields {
	return &CodeFields{
		Title:           "Quick start",
		Language:        "bash",
		Code:            "curl -fsSL https://example.com/install.sh | sh",
		ShowLineNumbers: true,
	}
}

func DefaultGalleryFields() *GalleryFields {
	return &GalleryFields{
		Title:    "Gallery",
		Columns:  3,
		Lightbox: true,
		Images: []GalleryImage{
			{Src: "https://images.unsplash.com/photo-1497366216548-37526070297c", Alt: "Office"},
			{Src: "https://images.unsplash.com/photo-1522071820081-009f0129c71c", Alt: "Team"},
			{Src: "https://images.unsplash.com/photo-1531482615713-2afd69097998", Alt: "Workshop"},
		},
	}
}

func DefaultFormFields() *FormFields {
	return &FormFields{
		Title:          "Get in touch",
		Description:    "Leave your details and we will get back to you.",
		SubmitText:     "Send",
		SuccessMessage: "Thanks! We will be in touch soon.",
		Fields: []FormField{
			{Name: "name", Label: "Name", Type: "text", Placeholder: "Jane Doe", Required: true},
			{Name: "email", Label: "Email", Type: "email", Placeholder: "jane@example.com", Required: true},
			{Name: "message", Label: "Message", Type: "textarea", Placeholder: "How can we help?"},
		},
	}
}

// DefaultLayoutFields returns a fresh default record for layout.
func DefaultLayoutFields(layout Layout) (LayoutFields, bool) {
	switch layout {
	case LayoutHero:
		return DefaultHeroFields(), true
	case LayoutBento:
		return DefaultBentoFields(), true
	case LayoutGrid:
		return DefaultGridFields(), true
	case LayoutColumns:
		return DefaultColumnsFields(), true
	case LayoutDivider:
		return DefaultDividerFields(), true
	case LayoutImage:
		return DefaultImageFields(), true
	case LayoutCode:
		return DefaultCodeFields(), true
	case LayoutGallery:
		return DefaultGalleryFields(), true
	case LayoutForm:
		return DefaultFormFields(), true
	}
	return nil, false
}

// DecodeFields builds the typed record for layout from an open mapping.
// Defaults are applied first; a key overrides its default only when its value
// decodes into the schema type. Keys outside the schema are ignored.
func DecodeFields(layout Layout, fields Fields) (LayoutFields, bool) {
	switch layout {
	case LayoutHero:
		return overlay(DefaultHeroFields(), fields), true
	case LayoutBento:
		return overlay(DefaultBentoFields(), fields), true
	case LayoutGrid:
		return overlay(DefaultGridFields(), fields), true
	case LayoutColumns:
		return overlay(DefaultColumnsFields(), fields), true
	case LayoutDivider:
		return overlay(DefaultDividerFields(), fields), true
	case LayoutImage:
		return overlay(DefaultImageFields(), fields), true
	case LayoutCode:
		return overlay(DefaultCodeFields(), fields), true
	case LayoutGallery:
		return overlay(DefaultGalleryFields(), fields), true
	case LayoutForm:
		return overlay(DefaultFormFields(), fields), true
	}
	return nil, false
}

func overlay[T any](base *T, fields Fields) *T {
	v := reflect.ValueOf(base).Elem()
	index := jsonFieldIndex(v.Type())
	for key, value := range fields {
		i, ok := index[key]
		if !ok || value == nil {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			continue
		}
		target := reflect.New(v.Field(i).Type())
		if err := json.Unmarshal(raw, target.Interface()); err != nil {
			continue
		}
		v.Field(i).Set(target.Elem())
	}
	return base
}

// jsonFieldIndex maps exact json tag names to struct field indexes.
func jsonFieldIndex(t reflect.Type) map[string]int {
	out := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out[name] = i
	}
	return out
}

// ToFields converts a typed record into the open mapping stored on a section.
func ToFields(v LayoutFields) (Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := Fields{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeFields passes f through JSON so in-memory values have the same
// shape they would have after being persisted and reloaded.
func NormalizeFields(f Fields) (Fields, error) {
	if f == nil {
		return Fields{}, nil
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	out := Fields{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
