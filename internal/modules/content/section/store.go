package section

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/pkg/kv"
	"go.uber.org/zap"
)

// DefaultKey is the kv key the collection is persisted under.
const DefaultKey = "landing.sections"

// Store is the single source of truth for the ordered dynamic sections. Every
// mutation persists the whole collection before it becomes visible; a failed
// save leaves the previous snapshot in place.
type Store struct {
	kv     kv.Store
	key    string
	fixed  []FixedSection
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	loaded   bool
	sections []models.Section
}

type StoreOption func(*Store)

func WithKey(key string) StoreOption {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

func WithFixedSections(fixed []FixedSection) StoreOption {
	return func(s *Store) { s.fixed = append([]FixedSection(nil), fixed...) }
}

func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.Named("SectionStore")
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(store kv.Store, opts ...StoreOption) *Store {
	s := &Store{
		kv:     store,
		key:    DefaultKey,
		fixed:  DefaultFixedSections(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted collection, replacing whatever is in memory.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	blob, ok, err := s.kv.Load(ctx, s.key)
	if err != nil {
		s.logger.Error("load sections failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: load %q: %w", ErrPersistence, s.key, err)
	}
	sections := []models.Section{}
	if ok {
		sections, err = Decode(blob)
		if err != nil {
			s.logger.Error("persisted sections are unreadable", zap.String("key", s.key), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}
	s.sections = sections
	s.loaded = true
	return nil
}

func (s *Store) snapshot(ctx context.Context) ([]models.Section, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return cloneAll(s.sections), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	return cloneAll(s.sections), nil
}

// mutate applies fn to a private copy of the collection and commits it only
// after it has been persisted.
func (s *Store) mutate(ctx context.Context, op string, fn func([]models.Section) ([]models.Section, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	next, err := fn(cloneAll(s.sections))
	if err != nil {
		return err
	}
	if err := s.persistLocked(ctx, next); err != nil {
		s.logger.Error("persist sections failed", zap.String("op", op), zap.Error(err))
		return err
	}
	s.sections = next
	s.logger.Debug("sections updated", zap.String("op", op), zap.Int("count", len(next)))
	return nil
}

func (s *Store) persistLocked(ctx context.Context, sections []models.Section) error {
	blob, err := Encode(sections)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}
	if err := s.kv.Save(ctx, s.key, blob); err != nil {
		return fmt.Errorf("%w: save %q: %w", ErrPersistence, s.key, err)
	}
	return nil
}

// All returns the fixed sections followed by the dynamic ones.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	sections, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(s.fixed)+len(sections))
	for i := range s.fixed {
		fixed := s.fixed[i]
		entries = append(entries, Entry{Kind: KindFixed, Position: len(entries), Fixed: &fixed})
	}
	for i := range sections {
		sec := sections[i]
		entries = append(entries, Entry{Kind: KindDynamic, Position: len(entries), Section: &sec})
	}
	return entries, nil
}

// List returns a copy of the dynamic sections in order.
func (s *Store) List(ctx context.Context) ([]models.Section, error) {
	return s.snapshot(ctx)
}

// Get returns a copy of the section with id and its position.
func (s *Store) Get(ctx context.Context, id string) (models.Section, int, error) {
	sections, err := s.snapshot(ctx)
	if err != nil {
		return models.Section{}, -1, err
	}
	idx := indexOf(sections, id)
	if idx < 0 {
		return models.Section{}, -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sections[idx], idx, nil
}

// Add appends sec at the end.
func (s *Store) Add(ctx context.Context, sec models.Section) error {
	if strings.TrimSpace(sec.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if strings.TrimSpace(sec.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !sec.Layout.Valid() {
		return fmt.Errorf("%w: unknown layout %q", ErrValidation, sec.Layout)
	}
	if err := sec.Styling.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields, err := models.NormalizeFields(sec.Fields)
	if err != nil {
		return fmt.Errorf("%w: fields are not serializable: %v", ErrValidation, err)
	}
	sec = sec.Clone()
	sec.Fields = fields

	return s.mutate(ctx, "add", func(cur []models.Section) ([]models.Section, error) {
		if indexOf(cur, sec.ID) >= 0 {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrValidation, sec.ID)
		}
		return append(cur, sec), nil
	})
}

// Update merges patch into the section's fields. Keys present in patch
// replace the previous value wholesale; absent keys are kept.
func (s *Store) Update(ctx context.Context, id string, patch models.Fields) (models.Section, error) {
	normalized, err := models.NormalizeFields(patch)
	if err != nil {
		return models.Section{}, fmt.Errorf("%w: patch is not serializable: %v", ErrValidation, err)
	}
	var updated models.Section
	err = s.mutate(ctx, "update", func(cur []models.Section) ([]models.Section, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if cur[idx].Fields == nil {
			cur[idx].Fields = models.Fields{}
		}
		for k, v := range normalized {
			cur[idx].Fields[k] = v
		}
		cur[idx].UpdatedAt = s.stamp()
		updated = cur[idx].Clone()
		return cur, nil
	})
	return updated, err
}

// UpdateStyling replaces the styling record as a whole.
func (s *Store) UpdateStyling(ctx context.Context, id string, styling models.SectionStyling) (models.Section, error) {
	if err := styling.Validate(); err != nil {
		return models.Section{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	var updated models.Section
	err := s.mutate(ctx, "update_styling", func(cur []models.Section) ([]models.Section, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		cur[idx].Styling = styling.Clone()
		cur[idx].UpdatedAt = s.stamp()
		updated = cur[idx].Clone()
		return cur, nil
	})
	return updated, err
}

// Rename changes the display name.
func (s *Store) Rename(ctx context.Context, id, name string) (models.Section, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Section{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	var updated models.Section
	err := s.mutate(ctx, "rename", func(cur []models.Section) ([]models.Section, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		cur[idx].Name = name
		cur[idx].UpdatedAt = s.stamp()
		updated = cur[idx].Clone()
		return cur, nil
	})
	return updated, err
}

// ToggleVisibility flips IsVisible.
func (s *Store) ToggleVisibility(ctx context.Context, id string) (models.Section, error) {
	var updated models.Section
	err := s.mutate(ctx, "toggle_visibility", func(cur []models.Section) ([]models.Section, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		cur[idx].IsVisible = !cur[idx].IsVisible
		cur[idx].UpdatedAt = s.stamp()
		updated = cur[idx].Clone()
		return cur, nil
	})
	return updated, err
}

// Delete removes the section; later sections shift down one position.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete", func(cur []models.Section) ([]models.Section, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return append(cur[:idx], cur[idx+1:]...), nil
	})
}

// Reorder rewrites the order to match ids, which must be a permutation of
// every current id.
func (s *Store) Reorder(ctx context.Context, ids []string) error {
	return s.mutate(ctx, "reorder", func(cur []models.Section) ([]models.Section, error) {
		if len(ids) != len(cur) {
			return nil, fmt.Errorf("%w: expected %d ids, got %d", ErrInvalidOrder, len(cur), len(ids))
		}
		byID := make(map[string]models.Section, len(cur))
		for _, sec := range cur {
			byID[sec.ID] = sec
		}
		next := make([]models.Section, 0, len(ids))
		for _, id := range ids {
			sec, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: unknown or repeated id %q", ErrInvalidOrder, id)
			}
			delete(byID, id)
			next = append(next, sec)
		}
		return next, nil
	})
}

// Swap exchanges the sections at positions i and j.
func (s *Store) Swap(ctx context.Context, i, j int) error {
	return s.mutate(ctx, "swap", func(cur []models.Section) ([]models.Section, error) {
		if i < 0 || j < 0 || i >= len(cur) || j >= len(cur) {
			return nil, fmt.Errorf("%w: positions %d and %d out of range [0,%d)", ErrInvalidOrder, i, j, len(cur))
		}
		cur[i], cur[j] = cur[j], cur[i]
		return cur, nil
	})
}

// Move takes the section with id out of the sequence and reinserts it at
// position to, as one operation.
func (s *Store) Move(ctx context.Context, id string, to int) error {
	return s.mutate(ctx, "move", func(cur []models.Section) ([]models.Section, error) {
		from := indexOf(cur, id)
		if from < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if to < 0 || to >= len(cur) {
			return nil, fmt.Errorf("%w: position %d out of range [0,%d)", ErrInvalidOrder, to, len(cur))
		}
		sec := cur[from]
		rest := append(cur[:from:from], cur[from+1:]...)
		next := make([]models.Section, 0, len(cur))
		next = append(next, rest[:to]...)
		next = append(next, sec)
		next = append(next, rest[to:]...)
		return next, nil
	})
}

// Export serializes the full collection.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	sections, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	blob, err := Encode(sections)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}
	return blob, nil
}

// Import replaces the whole collection with the decoded blob.
func (s *Store) Import(ctx context.Context, blob []byte) (int, error) {
	sections, err := Decode(blob)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for i := range sections {
		if !sections[i].Layout.Valid() {
			return 0, fmt.Errorf("%w: section %q has unknown layout %q", ErrValidation, sections[i].ID, sections[i].Layout)
		}
		if strings.TrimSpace(sections[i].Name) == "" {
			return 0, fmt.Errorf("%w: section %q has no name", ErrValidation, sections[i].ID)
		}
		if sections[i].Styling == (models.SectionStyling{}) {
			sections[i].Styling = DefaultStyling(sections[i].Layout)
		}
		if err := sections[i].Styling.Validate(); err != nil {
			return 0, fmt.Errorf("%w: section %q: %v", ErrValidation, sections[i].ID, err)
		}
	}
	err = s.mutate(ctx, "import", func([]models.Section) ([]models.Section, error) {
		return sections, nil
	})
	if err != nil {
		return 0, err
	}
	return len(sections), nil
}

// Reset drops every section from memory and from the persistence medium.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("%w: delete %q: %w", ErrPersistence, s.key, err)
	}
	s.sections = []models.Section{}
	s.loaded = true
	s.logger.Info("sections reset", zap.String("key", s.key))
	return nil
}

func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func indexOf(sections []models.Section, id string) int {
	for i := range sections {
		if sections[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(sections []models.Section) []models.Section {
	out := make([]models.Section, len(sections))
	for i := range sections {
		out[i] = sections[i].Clone()
	}
	return out
}
