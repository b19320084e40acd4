package sitemap

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"NewsIngest/internal/domain"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	newsNS    = "http://www.google.com/schemas/sitemap-news/0.9"

	changeFreq = "daily"
	priority   = "0.8"
)

// Exporter derives sitemap documents from a record snapshot. Export is a
// pure function of its input: the same records always produce byte-identical
// XML.
type Exporter struct {
	siteURL         string
	publicationName string
	language        string
	maxURLs         int
}

// NewExporter captures the site settings embedded in the documents.
func NewExporter(siteURL, publicationName, language string, maxURLs int) *Exporter {
	return &Exporter{
		siteURL:         strings.TrimSuffix(siteURL, "/"),
		publicationName: publicationName,
		language:        language,
		maxURLs:         maxURLs,
	}
}

type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type newsURLSet struct {
	XMLName   xml.Name       `xml:"urlset"`
	Xmlns     string         `xml:"xmlns,attr"`
	XmlnsNews string         `xml:"xmlns:news,attr"`
	URLs      []newsURLEntry `xml:"url"`
}

type newsURLEntry struct {
	Loc  string    `xml:"loc"`
	News newsBlock `xml:"news:news"`
}

type newsBlock struct {
	Publication     newsPublication `xml:"news:publication"`
	Title           cdataString     `xml:"news:title"`
	PublicationDate string          `xml:"news:publication_date"`
	IsBasedOn       string          `xml:"news:is_based_on"`
}

type newsPublication struct {
	Name     string `xml:"news:name"`
	Language string `xml:"news:language"`
}

type cdataString struct {
	Value string `xml:",cdata"`
}

// Build renders the standard sitemap: one url per processed record, newest
// first.
func (e *Exporter) Build(records []domain.Article) ([]byte, error) {
	selected := e.selectRecords(records)

	doc := urlset{Xmlns: sitemapNS, URLs: make([]urlEntry, 0, len(selected))}
	for _, rec := range selected {
		doc.URLs = append(doc.URLs, urlEntry{
			Loc:        e.articleURL(rec),
			LastMod:    rec.LastModified().UTC().Format(time.RFC3339),
			ChangeFreq: changeFreq,
			Priority:   priority,
		})
	}

	return marshal(doc)
}

// BuildNews renders the Google News variant with per-article publication
// blocks; the original source link travels in news:is_based_on.
func (e *Exporter) BuildNews(records []domain.Article) ([]byte, error) {
	selected := e.selectRecords(records)

	doc := newsURLSet{
		Xmlns:     sitemapNS,
		XmlnsNews: newsNS,
		URLs:      make([]newsURLEntry, 0, len(selected)),
	}
	for _, rec := range selected {
		doc.URLs = append(doc.URLs, newsURLEntry{
			Loc: e.articleURL(rec),
			News: newsBlock{
				Publication: newsPublication{
					Name:     e.publicationName,
					Language: e.language,
				},
				Title:           cdataString{Value: rec.Title},
				PublicationDate: rec.PublishedAt.UTC().Format(time.RFC3339),
				IsBasedOn:       rec.SourceLink,
			},
		})
	}

	return marshal(doc)
}

// selectRecords filters to processed records, orders newest first with stable
// tie-breaks, and applies the URL cap.
func (e *Exporter) selectRecords(records []domain.Article) []domain.Article {
	selected := make([]domain.Article, 0, len(records))
	for _, rec := range records {
		if rec.Processed() {
			selected = append(selected, rec)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if !a.LastModified().Equal(b.LastModified()) {
			return a.LastModified().After(b.LastModified())
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if e.maxURLs > 0 && len(selected) > e.maxURLs {
		selected = selected[:e.maxURLs]
	}
	return selected
}

func (e *Exporter) articleURL(rec domain.Article) string {
	return fmt.Sprintf("%s/article/%s", e.siteURL, rec.ID)
}

func marshal(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
