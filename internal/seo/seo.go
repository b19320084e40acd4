package seo

import (
	"strings"

	"NewsIngest/internal/domain"
)

const (
	maxTitleChars       = 60
	maxDescriptionChars = 155
	titleKeepChars      = 50
)

// Generator derives SEO metadata from a record. The output is a pure
// function of the record and the site settings, so it can be rebuilt at any
// time; it is never parsed back out of a rewrite-service response.
type Generator struct {
	siteURL      string
	siteName     string
	baseKeywords []string
}

// NewGenerator captures the site-level settings the metadata embeds.
func NewGenerator(siteURL, siteName string, baseKeywords []string) *Generator {
	return &Generator{
		siteURL:      strings.TrimSuffix(siteURL, "/"),
		siteName:     siteName,
		baseKeywords: baseKeywords,
	}
}

// Derive builds the metadata block for one record.
func (g *Generator) Derive(rec domain.Article) *domain.SEOData {
	return &domain.SEOData{
		Title:       g.title(rec),
		Description: description(rec),
		Keywords:    g.keywords(rec),
		Canonical:   g.Canonical(rec.ID),
	}
}

// Canonical returns the public URL an article is served under.
func (g *Generator) Canonical(id string) string {
	return g.siteURL + "/article/" + id
}

func (g *Generator) title(rec domain.Article) string {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = g.siteName
	}

	suffix := " - " + g.siteName
	if len(title)+len(suffix) <= maxTitleChars {
		return title + suffix
	}
	return truncate(title, titleKeepChars) + "..." + suffix
}

func description(rec domain.Article) string {
	desc := strings.TrimSpace(rec.Description)
	if desc == "" {
		desc = strings.TrimSpace(rec.Title)
	}
	if len(desc) <= maxDescriptionChars {
		return desc
	}
	return truncate(desc, maxDescriptionChars-3) + "..."
}

func (g *Generator) keywords(rec domain.Article) []string {
	keywords := make([]string, 0, len(g.baseKeywords)+1)
	keywords = append(keywords, g.baseKeywords...)
	if rec.Category != "" {
		keywords = append(keywords, rec.Category)
	}
	return keywords
}

// truncate cuts at a rune boundary so multibyte headlines stay valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	out := ""
	for _, r := range runes {
		if len(out)+len(string(r)) > max {
			break
		}
		out += string(r)
	}
	return strings.TrimSpace(out)
}
