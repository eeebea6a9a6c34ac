package nativelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDir(t *testing.T) {
	assert.Equal(t, "/var/log/landing", ResolveDir(" /var/log/landing "))

	t.Setenv(EnvLogDir, "/tmp/from-env")
	assert.Equal(t, "/tmp/from-env", ResolveDir(""))
}

func TestWriterAppendsToDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	day := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return day }

	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)
	n, err := w.Write(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	raw, err := os.ReadFile(filepath.Join(dir, "stdout_2026-03-09.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(raw))

	w.now = func() time.Time { return day.Add(time.Minute) }
	_, err = w.Write([]byte("next day\n"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "stdout_2026-03-10.log"))
	assert.NoError(t, err)
}
