package section

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mx-space/landing/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTemplates_StableCatalog(t *testing.T) {
	first := ListTemplates()
	second := ListTemplates()

	require.Len(t, first, 9)
	for i, l := range models.Layouts {
		assert.Equal(t, l, first[i].Layout)
		assert.NotEmpty(t, first[i].Name)
		assert.NotEmpty(t, first[i].Description)
		assert.NotEmpty(t, first[i].Icon)
		assert.NotEmpty(t, first[i].DefaultFields)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("catalog changed between calls (-first +second):\n%s", diff)
	}
}

func TestListTemplates_ReturnsCopies(t *testing.T) {
	tpls := ListTemplates()
	tpls[0].Name = "Mutated"
	tpls[0].DefaultFields["title"] = "Mutated"
	items := tpls[1].DefaultFields["items"].([]any)
	items[0].(map[string]any)["title"] = "Mutated"

	fresh := ListTemplates()
	assert.Equal(t, "Hero", fresh[0].Name)
	assert.NotEqual(t, "Mutated", fresh[0].DefaultFields["title"])
	freshItems := fresh[1].DefaultFields["items"].([]any)
	assert.NotEqual(t, "Mutated", freshItems[0].(map[string]any)["title"])
}

func TestTemplateFor(t *testing.T) {
	tpl, ok := TemplateFor(models.LayoutGallery)
	require.True(t, ok)
	assert.Equal(t, "Gallery", tpl.Name)
	assert.Equal(t, true, tpl.DefaultFields["lightbox"])

	_, ok = TemplateFor(models.Layout("carousel"))
	assert.False(t, ok)
}

func TestDefaultStyling(t *testing.T) {
	hero := DefaultStyling(models.LayoutHero)
	assert.Equal(t, "white", hero.Background)
	assert.Equal(t, models.TextColorAuto, hero.TextColor)
	assert.Equal(t, models.PaddingMedium, hero.Padding)
	assert.Equal(t, 16, hero.CardBorderRadius)
	assert.Equal(t, 100, hero.CardOpacity)
	assert.NoError(t, hero.Validate())

	assert.Equal(t, models.PaddingLarge, DefaultStyling(models.LayoutForm).Padding)
	assert.Equal(t, models.PaddingSmall, DefaultStyling(models.LayoutDivider).Padding)
}
