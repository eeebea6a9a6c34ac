package section

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAdd_DenseOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	ids := seed(t, s, newTestFactory(), models.LayoutHero, models.LayoutGrid, models.LayoutForm)

	assert.Equal(t, ids, idsOf(t, s))
	for i, id := range ids {
		_, pos, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, i, pos)
	}

	require.NoError(t, s.Delete(ctx, ids[1]))
	assert.Equal(t, []string{ids[0], ids[2]}, idsOf(t, s))
	_, pos, err := s.Get(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestStoreAdd_RejectsDuplicateAndEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	f := newTestFactory()
	sec, err := f.NewFromLayout(models.LayoutHero, "Hero")
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, sec))

	assert.ErrorIs(t, s.Add(ctx, sec), ErrValidation)

	noName := sec
	noName.ID = "other"
	noName.Name = " "
	assert.ErrorIs(t, s.Add(ctx, noName), ErrValidation)
	assert.Len(t, idsOf(t, s), 1)
}

func TestStoreAdd_RejectsUnknownLayoutAndBadStyling(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	f := newTestFactory()

	unknown, err := f.NewFromLayout(models.LayoutHero, "Bogus")
	require.NoError(t, err)
	unknown.Layout = "carousel"
	assert.ErrorIs(t, s.Add(ctx, unknown), ErrValidation)

	badStyling, err := f.NewFromLayout(models.LayoutHero, "Loud")
	require.NoError(t, err)
	badStyling.Styling.TextColor = "purple"
	badStyling.Styling.CardOpacity = 500
	assert.ErrorIs(t, s.Add(ctx, badStyling), ErrValidation)

	assert.Empty(t, idsOf(t, s))
}

func TestStoreAll_FixedThenDynamic(t *testing.T) {
	fixed := []FixedSection{{ID: "hero", Name: "Hero", Anchor: "top"}, {ID: "faq", Name: "FAQ", Anchor: "faq"}}
	s := NewStore(kv.NewMemory(), WithFixedSections(fixed))
	ids := seed(t, s, newTestFactory(), models.LayoutCode)

	entries, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, KindFixed, entries[0].Kind)
	assert.Equal(t, "hero", entries[0].Fixed.ID)
	assert.Equal(t, KindFixed, entries[1].Kind)
	assert.Equal(t, KindDynamic, entries[2].Kind)
	assert.Equal(t, ids[0], entries[2].Section.ID)
	for i, e := range entries {
		assert.Equal(t, i, e.Position)
	}
}

func TestStoreUpdate_IsAdditive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	ids := seed(t, s, newTestFactory(), models.LayoutHero)

	before, _, err := s.Get(ctx, ids[0])
	require.NoError(t, err)

	updated, err := s.Update(ctx, ids[0], models.Fields{"title": "New", "extra": 3})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Fields["title"])
	assert.Equal(t, float64(3), updated.Fields["extra"])
	for k, v := range before.Fields {
		if k == "title" {
			continue
		}
		assert.Equal(t, v, updated.Fields[k], "key %s should be untouched", k)
	}
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)

	again, _, err := s.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, updated, again)
}

func TestStoreUpdate_ListReplacedWholesale(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	ids := seed(t, s, newTestFactory(), models.LayoutGrid)

	items := []any{map[string]any{"title": "Only"}}
	updated, err := s.Update(ctx, ids[0], models.Fields{"items": items})
	require.NoError(t, err)
	assert.Len(t, updated.Fields["items"], 1)

	items[0].(map[string]any)["title"] = "mutated after call"
	got, _, err := s.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Only", got.Fields["items"].([]any)[0].(map[string]any)["title"])
}

func TestStoreUpdate_UnknownID(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	_, err := s.Update(context.Background(), "missing", models.Fields{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpdateStyling(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	ids := seed(t, s, newTestFactory(), models.LayoutImage)

	opacity := 40
	styling := models.SectionStyling{
		Background: "slate-900", BackgroundImage: "https://example.com/bg.jpg", ImageOpacity: &opacity,
		Parallax: true, TextColor: models.TextColorLight, Padding: models.PaddingLarge,
		CardBorderRadius: 8, CardOpacity: 90,
	}
	updated, err := s.UpdateStyling(ctx, ids[0], styling)
	require.NoError(t, err)
	assert.Equal(t, styling, updated.Styling)

	opacity = 99
	got, _, err := s.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 40, *got.Styling.ImageOpacity)

	bad := styling
	bad.Padding = "huge"
	_, err = s.UpdateStyling(ctx, ids[0], bad)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.UpdateStyling(ctx, "missing", styling)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRenameAndToggle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	ids := seed(t, s, newTestFactory(), models.LayoutColumns)

	renamed, err := s.Rename(ctx, ids[0], " How it works ")
	require.NoError(t, err)
	assert.Equal(t, "How it works", renamed.Name)

	_, err = s.Rename(ctx, ids[0], "")
	assert.ErrorIs(t, err, ErrValidation)

	hidden, err := s.ToggleVisibility(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, hidden.IsVisible)
	shown, err := s.ToggleVisibility(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, shown.IsVisible)

	_, err = s.ToggleVisibility(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDelete_UnknownLeavesCount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	seed(t, s, newTestFactory(), models.LayoutHero, models.LayoutDivider)

	err := s.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, idsOf(t, s), 2)
}

func TestStoreReorder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	ids := seed(t, s, newTestFactory(), models.LayoutHero, models.LayoutBento, models.LayoutCode)

	want := []string{ids[2], ids[0], ids[1]}
	require.NoError(t, s.Reorder(ctx, want))
	assert.Equal(t, want, idsOf(t, s))
}

func TestStoreReorder_InvalidLeavesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	ids := seed(t, s, newTestFactory(), models.LayoutHero, models.LayoutBento, models.LayoutCode)

	cases := map[string][]string{
		"missing id":   {ids[2], ids[0]},
		"unknown id":   {ids[2], ids[0], "ghost"},
		"repeated id":  {ids[0], ids[0], ids[1]},
		"too many ids": {ids[0], ids[1], ids[2], "extra"},
	}
	for name, order := range cases {
		t.Run(name, func(t *testing.T) {
			err := s.Reorder(ctx, order)
			assert.ErrorIs(t, err, ErrInvalidOrder)
			assert.Equal(t, ids, idsOf(t, s))
		})
	}
}

func TestStoreSwapAndMove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	ids := seed(t, s, newTestFactory(), models.LayoutHero, models.LayoutBento, models.LayoutCode, models.LayoutForm)

	require.NoError(t, s.Swap(ctx, 0, 3))
	assert.Equal(t, []string{ids[3], ids[1], ids[2], ids[0]}, idsOf(t, s))
	assert.ErrorIs(t, s.Swap(ctx, 0, 4), ErrInvalidOrder)

	require.NoError(t, s.Move(ctx, ids[0], 1))
	assert.Equal(t, []string{ids[3], ids[0], ids[1], ids[2]}, idsOf(t, s))

	require.NoError(t, s.Move(ctx, ids[3], 3))
	assert.Equal(t, []string{ids[0], ids[1], ids[2], ids[3]}, idsOf(t, s))

	assert.ErrorIs(t, s.Move(ctx, ids[0], -1), ErrInvalidOrder)
	assert.ErrorIs(t, s.Move(ctx, "missing", 0), ErrNotFound)
	assert.Equal(t, []string{ids[0], ids[1], ids[2], ids[3]}, idsOf(t, s))
}

func TestStore_PersistenceFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := newFlakyKV()
	s := newTestStore(t, backend)
	f := newTestFactory()
	ids := seed(t, s, f, models.LayoutHero)

	backend.setFailSave(true)

	sec, err := f.NewFromLayout(models.LayoutGrid, "Grid")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Add(ctx, sec), ErrPersistence)

	_, err = s.Update(ctx, ids[0], models.Fields{"title": "lost"})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, s.Delete(ctx, ids[0]), ErrPersistence)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEqual(t, "lost", list[0].Fields["title"])

	backend.setFailSave(false)
	require.NoError(t, s.Add(ctx, sec))
	assert.Len(t, idsOf(t, s), 2)
}

func TestStore_LoadFailure(t *testing.T) {
	backend := newFlakyKV()
	backend.failLoad = true
	s := newTestStore(t, backend)

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestStore_ReloadsPersistedState(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	s := newTestStore(t, backend)
	ids := seed(t, s, newTestFactory(), models.LayoutGallery, models.LayoutForm)
	_, err := s.Update(ctx, ids[0], models.Fields{"columns": 4})
	require.NoError(t, err)

	want, err := s.List(ctx)
	require.NoError(t, err)

	reopened := newTestStore(t, backend)
	got, err := reopened.List(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reloaded sections differ (-want +got):\n%s", diff)
	}
}

func TestStoreExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t, kv.NewMemory())
	seed(t, src, newTestFactory(), models.Layouts...)

	blob, err := src.Export(ctx)
	require.NoError(t, err)

	dst := newTestStore(t, kv.NewMemory())
	n, err := dst.Import(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, len(models.Layouts), n)

	again, err := dst.Export(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(blob), string(again))

	want, _ := src.List(ctx)
	got, _ := dst.List(ctx)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("imported sections differ (-want +got):\n%s", diff)
	}
}

func TestStoreImport_Rejects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())
	ids := seed(t, s, newTestFactory(), models.LayoutHero)

	cases := map[string]string{
		"malformed":      `{"version":1,"sections":[`,
		"future version": `{"version":9,"sections":[]}`,
		"unknown layout": `[{"id":"a","name":"A","layout":"carousel"}]`,
		"duplicate id":   `[{"id":"a","name":"A","layout":"hero"},{"id":"a","name":"B","layout":"hero"}]`,
		"missing name":   `[{"id":"a","name":"","layout":"hero"}]`,
		"bad styling":    `[{"id":"a","name":"A","layout":"hero","styling":{"background":"white","textColor":"purple","padding":"large","cardOpacity":500}}]`,
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Import(ctx, []byte(blob))
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, ids, idsOf(t, s))
		})
	}
}

func TestStoreImport_MissingStylingUsesTemplateDefault(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())

	n, err := s.Import(ctx, []byte(`[{"id":"a","name":"A","layout":"form"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sec, _, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, DefaultStyling(models.LayoutForm), sec.Styling)
}

func TestStoreReset(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	s := newTestStore(t, backend)
	seed(t, s, newTestFactory(), models.LayoutHero)

	require.NoError(t, s.Reset(ctx))
	assert.Empty(t, idsOf(t, s))

	_, ok, err := backend.Load(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
