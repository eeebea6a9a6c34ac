// Package render turns dynamic sections into HTML and binds their edit
// controls back into single-key patches.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/modules/processing/markdown"
	"go.uber.org/zap"
)

//go:embed views/*.gohtml
var viewFS embed.FS

// Options controls a single Render call.
type Options struct {
	// Edit appends the edit controls after the view.
	Edit bool
	// Action is the URL the edit form posts to. Defaults to
	// /admin/sections/<id>/fields.
	Action string
}

// Dispatcher renders sections by layout tag. It is safe for concurrent use.
type Dispatcher struct {
	views  *template.Template
	logger *zap.Logger
}

type sectionView struct {
	Section    models.Section
	Fields     models.LayoutFields
	Body       template.HTML
	Class      string
	Style      template.CSS
	LayerStyle template.CSS
	Parallax   bool
	Edit       bool
	Action     string
	Controls   []controlView
}

type controlView struct {
	Control
	Name    string
	Value   string
	Checked bool
	Items   []itemView
}

type itemView struct {
	Prefix   string
	Blank    bool
	Controls []controlView
}

var funcs = template.FuncMap{
	"md":             markdown.Render,
	"inline":         markdown.RenderInline,
	"parallaxFactor": func() string { return strconv.FormatFloat(ParallaxFactor, 'f', -1, 64) },
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	views := template.Must(template.New("render").Funcs(funcs).ParseFS(viewFS, "views/*.gohtml"))
	return &Dispatcher{views: views, logger: logger.Named("Render")}
}

// Render produces the HTML of sec. It never fails: an unknown layout or a
// broken view yields a placeholder and a logged diagnostic.
func (d *Dispatcher) Render(sec models.Section, opts Options) template.HTML {
	typed, ok := models.DecodeFields(sec.Layout, sec.Fields)
	if !ok {
		d.logger.Warn("unknown section layout", zap.String("id", sec.ID), zap.String("layout", string(sec.Layout)))
		return d.placeholder(sec)
	}

	view := sectionView{
		Section:    sec,
		Fields:     typed,
		Class:      wrapperClass(sec, opts.Edit),
		Style:      BackgroundStyle(sec.Styling),
		LayerStyle: BackgroundLayerStyle(sec.Styling, 0),
		Parallax:   sec.Styling.Parallax,
		Edit:       opts.Edit,
		Action:     opts.Action,
	}
	if view.Action == "" {
		view.Action = "/admin/sections/" + url.PathEscape(sec.ID) + "/fields"
	}
	if opts.Edit {
		current, err := models.ToFields(typed)
		if err != nil {
			d.logger.Error("encode section fields failed", zap.String("id", sec.ID), zap.Error(err))
		}
		view.Controls = controlViews(schemas[sec.Layout], current, "")
	}

	var body bytes.Buffer
	if err := d.views.ExecuteTemplate(&body, string(sec.Layout), view); err != nil {
		d.logger.Error("render section view failed", zap.String("id", sec.ID), zap.Error(err))
		return d.placeholder(sec)
	}
	view.Body = template.HTML(body.String()) //nolint:gosec

	var out bytes.Buffer
	if err := d.views.ExecuteTemplate(&out, "section", view); err != nil {
		d.logger.Error("render section wrapper failed", zap.String("id", sec.ID), zap.Error(err))
		return d.placeholder(sec)
	}
	return template.HTML(out.String()) //nolint:gosec
}

// Apply reads the submitted edit controls of sec and calls onUpdate once for
// every key whose value changed. Invalid input is reported before any update
// is issued.
func (d *Dispatcher) Apply(sec models.Section, form url.Values, onUpdate UpdateFunc) error {
	schema, ok := schemas[sec.Layout]
	if !ok {
		d.logger.Warn("apply on unknown section layout", zap.String("id", sec.ID), zap.String("layout", string(sec.Layout)))
		return fmt.Errorf("%w: unknown layout %q", ErrInvalidInput, sec.Layout)
	}
	bindings, err := bind(schema, form)
	if err != nil {
		return err
	}

	typed, _ := models.DecodeFields(sec.Layout, sec.Fields)
	current, err := models.ToFields(typed)
	if err != nil {
		return err
	}
	stored, err := models.NormalizeFields(sec.Fields)
	if err != nil {
		return err
	}

	for _, b := range bindings {
		patch, err := models.NormalizeFields(models.Fields{b.key: b.value})
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidInput, b.key, err)
		}
		prev, ok := stored[b.key]
		if !ok {
			prev = current[b.key]
		}
		if !changed(prev, patch[b.key]) {
			continue
		}
		if err := onUpdate(patch); err != nil {
			return err
		}
	}
	return nil
}

// PageEntry is one block of a rendered page.
type PageEntry struct {
	ID      string
	Name    string
	Anchor  string
	Fixed   bool
	Visible bool
	HTML    template.HTML
}

// PageView is the data of a full landing or admin document.
type PageView struct {
	Title   string
	Admin   bool
	User    string
	Editing string
	Notice  string
	Entries []PageEntry
}

// RenderPage writes a complete HTML document.
func (d *Dispatcher) RenderPage(w io.Writer, page PageView) error {
	return d.views.ExecuteTemplate(w, "page", page)
}

func (d *Dispatcher) placeholder(sec models.Section) template.HTML {
	var out bytes.Buffer
	if err := d.views.ExecuteTemplate(&out, "placeholder", sec); err != nil {
		return template.HTML(`<section class="lp-section lp-unknown"></section>`)
	}
	return template.HTML(out.String()) //nolint:gosec
}

func wrapperClass(sec models.Section, edit bool) string {
	classes := []string{
		"lp-section",
		"lp-" + string(sec.Layout),
		"lp-pad-" + string(sec.Styling.Padding),
		"lp-text-" + string(ResolveTextTheme(sec.Styling)),
	}
	if bg := BackgroundClass(sec.Styling); bg != "" {
		classes = append(classes, bg)
	}
	if edit {
		classes = append(classes, "lp-editing")
	}
	if !sec.IsVisible {
		classes = append(classes, "lp-hidden")
	}
	return strings.Join(classes, " ")
}

func controlViews(schema []Control, values map[string]any, prefix string) []controlView {
	out := make([]controlView, 0, len(schema))
	for _, c := range schema {
		cv := controlView{Control: c, Name: prefix + c.Key}
		v := values[c.Key]
		switch c.Kind {
		case KindList:
			raw, _ := v.([]any)
			for i, item := range raw {
				fields, _ := item.(map[string]any)
				p := fmt.Sprintf("%s.%d", cv.Name, i)
				cv.Items = append(cv.Items, itemView{Prefix: p, Controls: controlViews(c.Item, fields, p+".")})
			}
			p := fmt.Sprintf("%s.%d", cv.Name, len(raw))
			cv.Items = append(cv.Items, itemView{Prefix: p, Blank: true, Controls: controlViews(c.Item, nil, p+".")})
		case KindCheckbox:
			cv.Checked, _ = v.(bool)
		default:
			cv.Value = formatValue(v)
		}
		out = append(out, cv)
	}
	return out
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
