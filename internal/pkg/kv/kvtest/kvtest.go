// Package kvtest holds a behavioural suite every kv.Store adapter must pass.
package kvtest

import (
	"context"
	"testing"

	"github.com/mx-space/landing/internal/pkg/kv"
)

// RunComplianceTests runs the standard suite against s.
func RunComplianceTests(t *testing.T, s kv.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		if err := s.Save(ctx, "compliance-key", []byte(`{"a":1}`)); err != nil {
			t.Fatal(err)
		}
		blob, ok, err := s.Load(ctx, "compliance-key")
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expected key to be present after Save")
		}
		if string(blob) != `{"a":1}` {
			t.Fatalf("expected {\"a\":1}, got %s", blob)
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, ok, err := s.Load(ctx, "missing-key")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("expected absent key")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = s.Save(ctx, "ow-key", []byte("v1"))
		_ = s.Save(ctx, "ow-key", []byte("v2"))
		blob, ok, err := s.Load(ctx, "ow-key")
		if err != nil || !ok {
			t.Fatalf("load after overwrite: ok=%v err=%v", ok, err)
		}
		if string(blob) != "v2" {
			t.Fatalf("expected v2, got %s", blob)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = s.Save(ctx, "del-key", []byte("x"))
		if err := s.Delete(ctx, "del-key"); err != nil {
			t.Fatal(err)
		}
		if _, ok, _ := s.Load(ctx, "del-key"); ok {
			t.Fatal("expected key to be gone after Delete")
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		if err := s.Delete(ctx, "never-existed"); err != nil {
			t.Fatalf("Delete of absent key should not error: %v", err)
		}
	})

	t.Run("LoadedBlobIsACopy", func(t *testing.T) {
		_ = s.Save(ctx, "copy-key", []byte("abc"))
		blob, _, _ := s.Load(ctx, "copy-key")
		blob[0] = 'z'
		again, _, _ := s.Load(ctx, "copy-key")
		if string(again) != "abc" {
			t.Fatalf("stored blob was mutated through Load result: %s", again)
		}
	})
}
