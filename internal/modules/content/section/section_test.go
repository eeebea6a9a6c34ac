package section

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/pkg/kv"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// flakyKV wraps kv.Memory and fails writes on demand.
type flakyKV struct {
	*kv.Memory
	mu       sync.Mutex
	failSave bool
	failLoad bool
	saves    int
}

func newFlakyKV() *flakyKV { return &flakyKV{Memory: kv.NewMemory()} }

func (f *flakyKV) setFailSave(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSave = v
}

func (f *flakyKV) Load(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.failLoad
	f.mu.Unlock()
	if fail {
		return nil, false, errors.New("disk unavailable")
	}
	return f.Memory.Load(ctx, key)
}

func (f *flakyKV) Save(ctx context.Context, key string, blob []byte) error {
	f.mu.Lock()
	fail := f.failSave
	f.saves++
	f.mu.Unlock()
	if fail {
		return errors.New("quota exceeded")
	}
	return f.Memory.Save(ctx, key, blob)
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("sec_%d", n)
	}
}

func newTestFactory() *Factory {
	return NewFactory(WithIDGenerator(sequentialIDs()), WithFactoryClock(func() time.Time { return fixedNow }))
}

func newTestStore(t *testing.T, store kv.Store) *Store {
	t.Helper()
	return NewStore(store, WithClock(func() time.Time { return fixedNow.Add(time.Hour) }))
}

// seed adds one section per layout and returns their ids in order.
func seed(t *testing.T, s *Store, f *Factory, layouts ...models.Layout) []string {
	t.Helper()
	ids := make([]string, 0, len(layouts))
	for _, l := range layouts {
		sec, err := f.NewFromLayout(l, string(l)+" section")
		require.NoError(t, err)
		require.NoError(t, s.Add(context.Background(), sec))
		ids = append(ids, sec.ID)
	}
	return ids
}

func idsOf(t *testing.T, s *Store) []string {
	t.Helper()
	list, err := s.List(context.Background())
	require.NoError(t, err)
	out := make([]string, len(list))
	for i, sec := range list {
		out[i] = sec.ID
	}
	return out
}
