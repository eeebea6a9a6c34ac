package render

import "github.com/mx-space/landing/internal/models"

// Kind selects the input widget of a control and how its submitted value is
// parsed.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindMarkdown Kind = "markdown"
	KindCode     Kind = "code"
	KindURL      Kind = "url"
	KindNumber   Kind = "number"
	KindCheckbox Kind = "checkbox"
	KindSelect   Kind = "select"
	KindTags     Kind = "tags"
	KindList     Kind = "list"
)

// Control describes one editable key of a layout's field record. List
// controls carry the schema of a single item in Item.
type Control struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Kind    Kind      `json:"kind"`
	Options []string  `json:"options,omitempty"`
	Min     int       `json:"min,omitempty"`
	Max     int       `json:"max,omitempty"`
	Item    []Control `json:"item,omitempty"`
}

func text(key, label string) Control     { return Control{Key: key, Label: label, Kind: KindText} }
func textarea(key, label string) Control { return Control{Key: key, Label: label, Kind: KindTextarea} }
func md(key, label string) Control       { return Control{Key: key, Label: label, Kind: KindMarkdown} }
func link(key, label string) Control     { return Control{Key: key, Label: label, Kind: KindURL} }
func check(key, label string) Control    { return Control{Key: key, Label: label, Kind: KindCheckbox} }
func tags(key, label string) Control     { return Control{Key: key, Label: label, Kind: KindTags} }

func number(key, label string, lo, hi int) Control {
	return Control{Key: key, Label: label, Kind: KindNumber, Min: lo, Max: hi}
}

func choice(key, label string, options ...string) Control {
	return Control{Key: key, Label: label, Kind: KindSelect, Options: options}
}

func list(key, label string, item ...Control) Control {
	return Control{Key: key, Label: label, Kind: KindList, Item: item}
}

var schemas = map[models.Layout][]Control{
	models.LayoutHero: {
		text("title", "Title"),
		text("subtitle", "Subtitle"),
		md("description", "Description"),
		text("primaryButtonText", "Primary button"),
		link("primaryButtonLink", "Primary link"),
		text("secondaryButtonText", "Secondary button"),
		link("secondaryButtonLink", "Secondary link"),
		link("image", "Image URL"),
		choice("alignment", "Alignment", "left", "center", "right"),
	},
	models.LayoutBento: {
		text("title", "Title"),
		text("subtitle", "Subtitle"),
		list("items", "Cards",
			text("title", "Title"),
			textarea("description", "Description"),
			text("icon", "Icon"),
			link("image", "Image URL"),
			choice("size", "Size", "small", "wide", "tall", "large"),
			link("link", "Link"),
		),
	},
	models.LayoutGrid: {
		text("title", "Title"),
		text("subtitle", "Subtitle"),
		number("columns", "Columns", 2, 4),
		list("items", "Items",
			text("title", "Title"),
			textarea("description", "Description"),
			text("icon", "Icon"),
			link("image", "Image URL"),
			link("link", "Link"),
		),
	},
	models.LayoutColumns: {
		text("title", "Title"),
		list("columns", "Columns",
			text("title", "Title"),
			md("content", "Content"),
			link("image", "Image URL"),
		),
	},
	models.LayoutDivider: {
		choice("style", "Style", "line", "dashed", "dotted", "gradient", "space"),
		number("height", "Height (px)", 0, 200),
		text("color", "Color"),
		text("label", "Label"),
	},
	models.LayoutImage: {
		link("src", "Image URL"),
		text("alt", "Alt text"),
		text("caption", "Caption"),
		choice("width", "Width", "narrow", "wide", "full"),
		link("link", "Link"),
	},
	models.LayoutCode: {
		text("title", "Title"),
		text("language", "Language"),
		{Key: "code", Label: "Code", Kind: KindCode},
		check("showLineNumbers", "Show line numbers"),
		text("caption", "Caption"),
	},
	models.LayoutGallery: {
		text("title", "Title"),
		number("columns", "Columns", 1, 6),
		check("lightbox", "Open images in a lightbox"),
		list("images", "Images",
			link("src", "Image URL"),
			text("alt", "Alt text"),
			text("caption", "Caption"),
		),
	},
	models.LayoutForm: {
		text("title", "Title"),
		md("description", "Description"),
		text("submitText", "Submit button"),
		text("successMessage", "Success message"),
		link("action", "Submit URL"),
		list("fields", "Fields",
			text("name", "Name"),
			text("label", "Label"),
			choice("type", "Type", "text", "email", "tel", "number", "textarea", "select", "checkbox"),
			text("placeholder", "Placeholder"),
			check("required", "Required"),
			tags("options", "Options (comma separated)"),
		),
	},
}

// Controls returns the edit schema of layout.
func Controls(layout models.Layout) ([]Control, bool) {
	c, ok := schemas[layout]
	if !ok {
		return nil, false
	}
	return append([]Control(nil), c...), true
}
