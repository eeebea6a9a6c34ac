package kv_test

import (
	"testing"

	"github.com/mx-space/landing/internal/pkg/kv"
	"github.com/mx-space/landing/internal/pkg/kv/kvtest"
)

func TestMemoryCompliance(t *testing.T) {
	kvtest.RunComplianceTests(t, kv.NewMemory())
}
