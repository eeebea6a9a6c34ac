package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetDelete(t *testing.T) {
	c, err := New[[]string](1 << 20)
	require.NoError(t, err)
	defer c.Close()

	require.True(t, c.Set("k", []string{"a", "b"}, 2, time.Minute))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCache_Miss(t *testing.T) {
	c, err := New[int](0)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("nope")
	assert.False(t, ok)
}
