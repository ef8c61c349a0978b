package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProgress(t *testing.T) {
	t.Parallel()

	t.Run("creates progress with specified total", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(10)
		require.NotNil(t, p.bar)
		require.Equal(t, 10, p.total)
	})

	t.Run("creates progress with zero total", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(0)
		require.NotNil(t, p.bar)
		require.Equal(t, 0, p.total)
	})
}

func TestProgressView(t *testing.T) {
	t.Parallel()

	t.Run("renders with zero total", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(0)
		view := p.View(0, 0)
		require.Contains(t, view, "0/0")
	})

	t.Run("renders with partial completion", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(10)
		view := p.View(5, 0)
		require.Contains(t, view, "5/10")
		require.NotEmpty(t, view)
	})

	t.Run("renders with full completion", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(10)
		view := p.View(10, 0)
		require.Contains(t, view, "10/10")
	})

	t.Run("handles completion beyond total", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(10)
		view := p.View(15, 0)
		require.Contains(t, view, "15/10")
		require.NotEmpty(t, view)
	})

	t.Run("shows cumulative row count when rows moved", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(4)
		view := p.View(2, 1200)
		require.Contains(t, view, "2/4")
		require.Contains(t, view, "1200 rows")
	})

	t.Run("omits row count before any rows moved", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(4)
		view := p.View(0, 0)
		require.NotContains(t, view, "rows")
	})

	t.Run("view contains both label and progress bar", func(t *testing.T) {
		t.Parallel()
		p := NewProgress(10)
		view := p.View(5, 0)
		require.True(t, len(strings.TrimSpace(view)) > len("5/10"),
			"expected view to contain progress bar in addition to label")
	})
}
