package section

import (
	"fmt"
	"strings"
	"time"

	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/pkg/idgen"
)

// Factory builds new sections from catalog templates. It has no side effects
// on any store.
type Factory struct {
	newID idgen.Generator
	now   func() time.Time
}

type FactoryOption func(*Factory)

// WithIDGenerator overrides the id scheme.
func WithIDGenerator(gen idgen.Generator) FactoryOption {
	return func(f *Factory) { f.newID = gen }
}

// WithFactoryClock overrides the creation timestamp source.
func WithFactoryClock(now func() time.Time) FactoryOption {
	return func(f *Factory) { f.now = now }
}

func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{newID: idgen.SectionID(), now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// New creates a visible section named name from tpl.
func (f *Factory) New(tpl Template, name string) (models.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Section{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	registered, ok := TemplateFor(tpl.Layout)
	if !ok {
		return models.Section{}, fmt.Errorf("%w: unknown template %q", ErrValidation, tpl.Layout)
	}

	now := f.now().UTC().Truncate(time.Millisecond)
	return models.Section{
		ID:        f.newID(),
		Name:      name,
		Layout:    registered.Layout,
		IsVisible: true,
		Fields:    tpl.DefaultFields.Clone(),
		Styling:   registered.DefaultStyling,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewFromLayout is a convenience for callers holding only a layout tag.
func (f *Factory) NewFromLayout(layout models.Layout, name string) (models.Section, error) {
	tpl, ok := TemplateFor(layout)
	if !ok {
		return models.Section{}, fmt.Errorf("%w: unknown template %q", ErrValidation, layout)
	}
	return f.New(tpl, name)
}
