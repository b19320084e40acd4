package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"NewsIngest/internal/apperr"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

func (s *Server) listArticles(c echo.Context) error {
	records, err := s.store.Scan(c.Request().Context(), ports.ScanFilter{
		Status: domain.Status(c.QueryParam("status")),
	})
	if err != nil {
		s.logger.Error("list articles", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "error fetching articles")
	}

	category := c.QueryParam("category")
	query := strings.ToLower(c.QueryParam("q"))

	filtered := make([]domain.Article, 0, len(records))
	for _, rec := range records {
		if category != "" && rec.Category != category {
			continue
		}
		if query != "" && !matchesQuery(rec, query) {
			continue
		}
		filtered = append(filtered, rec)
	}

	return c.JSON(http.StatusOK, filtered)
}

func matchesQuery(rec domain.Article, query string) bool {
	if strings.Contains(strings.ToLower(rec.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.RewrittenContent), query) {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Description), query)
}

func (s *Server) getArticle(c echo.Context) error {
	rec, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "article not found")
		}
		s.logger.Error("get article", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "error fetching article")
	}

	return c.JSON(http.StatusOK, rec)
}

type articleSEO struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Keywords     string `json:"keywords"`
	URL          string `json:"url"`
	LastModified string `json:"lastModified"`
}

type siteSEOResponse struct {
	SiteTitle       string       `json:"siteTitle"`
	SiteDescription string       `json:"siteDescription"`
	Articles        []articleSEO `json:"articles"`
	LastUpdated     string       `json:"lastUpdated"`
}

func (s *Server) siteSEO(c echo.Context) error {
	records, err := s.store.Scan(c.Request().Context(), ports.ScanFilter{Status: domain.StatusProcessed})
	if err != nil {
		s.logger.Error("seo route", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "error fetching SEO data")
	}

	articles := make([]articleSEO, 0, len(records))
	for _, rec := range records {
		// SEO blocks are regenerable; derive on the fly when a record
		// predates the stored block.
		meta := rec.SEO
		if meta == nil {
			meta = s.seo.Derive(rec)
		}
		articles = append(articles, articleSEO{
			Title:        meta.Title,
			Description:  meta.Description,
			Keywords:     strings.Join(meta.Keywords, ", "),
			URL:          meta.Canonical,
			LastModified: rec.LastModified().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, siteSEOResponse{
		SiteTitle:       s.site.PublicationName + " - Latest News",
		SiteDescription: "Latest news updates covering politics, sports, culture, and more.",
		Articles:        articles,
		LastUpdated:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) sitemapXML(c echo.Context) error {
	return s.serveSitemap(c, s.exporter.Build)
}

func (s *Server) newsSitemapXML(c echo.Context) error {
	return s.serveSitemap(c, s.exporter.BuildNews)
}

func (s *Server) serveSitemap(c echo.Context, build func([]domain.Article) ([]byte, error)) error {
	records, err := s.store.Scan(c.Request().Context(), ports.ScanFilter{})
	if err != nil {
		s.logger.Error("sitemap route", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "error generating sitemap")
	}

	body, err := build(records)
	if err != nil {
		s.logger.Error("sitemap route", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "error generating sitemap")
	}

	return c.Blob(http.StatusOK, "application/xml", body)
}

func (s *Server) robots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", s.site.SiteURL)
	return c.String(http.StatusOK, body)
}
