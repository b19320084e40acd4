package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsIngest/internal/domain"
)

func TestDerive(t *testing.T) {
	t.Parallel()

	g := NewGenerator("https://news.example.com/", "OdishaLive", []string{"odisha", "odisha news"})
	data := g.Derive(domain.Article{
		ID:          "abc-123",
		Title:       "Monsoon arrives early",
		Description: "Rain across the coastal belt.",
		Category:    "Weather",
	})

	assert.Equal(t, "Monsoon arrives early - OdishaLive", data.Title)
	assert.Equal(t, "Rain across the coastal belt.", data.Description)
	assert.Equal(t, []string{"odisha", "odisha news", "Weather"}, data.Keywords)
	assert.Equal(t, "https://news.example.com/article/abc-123", data.Canonical)
}

func TestDeriveTruncatesLongTitle(t *testing.T) {
	t.Parallel()

	g := NewGenerator("https://news.example.com", "OL", nil)
	long := strings.Repeat("word ", 30)
	data := g.Derive(domain.Article{ID: "x", Title: long})

	assert.True(t, strings.HasSuffix(data.Title, "... - OL"), "title %q", data.Title)
	assert.LessOrEqual(t, len(data.Title), 60)
}

func TestDeriveTruncatesLongDescription(t *testing.T) {
	t.Parallel()

	g := NewGenerator("https://news.example.com", "OL", nil)
	data := g.Derive(domain.Article{ID: "x", Description: strings.Repeat("d", 300)})

	assert.Len(t, data.Description, 155)
	assert.True(t, strings.HasSuffix(data.Description, "..."))
}

func TestDeriveFallbacks(t *testing.T) {
	t.Parallel()

	g := NewGenerator("https://news.example.com", "OdishaLive", []string{"odisha"})

	// Empty description falls back to the title.
	data := g.Derive(domain.Article{ID: "x", Title: "Headline only"})
	assert.Equal(t, "Headline only", data.Description)

	// Empty title falls back to the site name; empty category adds no keyword.
	data = g.Derive(domain.Article{ID: "x"})
	assert.Equal(t, "OdishaLive - OdishaLive", data.Title)
	assert.Equal(t, []string{"odisha"}, data.Keywords)
}

func TestDeriveIsRebuildable(t *testing.T) {
	t.Parallel()

	g := NewGenerator("https://news.example.com", "OdishaLive", []string{"odisha"})
	rec := domain.Article{ID: "same", Title: "Stable", Description: "Stable desc", Category: "State"}

	first := g.Derive(rec)
	second := g.Derive(rec)
	require.Equal(t, first, second)
}
