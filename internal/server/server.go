package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"NewsIngest/internal/config"
	"NewsIngest/internal/ports"
	"NewsIngest/internal/seo"
	"NewsIngest/internal/sitemap"
)

const gracefulShutdownTimeout = 10 * time.Second

// Server exposes the record set over a thin JSON API plus the sitemap and
// robots endpoints search engines poll. It only reads the store; all
// mutation stays inside the pipeline sweeps.
type Server struct {
	echo     *echo.Echo
	store    ports.ArticleStore
	exporter *sitemap.Exporter
	seo      *seo.Generator
	cfg      config.Server
	site     config.Sitemap
	logger   *slog.Logger
}

// New builds the server and registers all routes.
func New(store ports.ArticleStore, exporter *sitemap.Exporter, gen *seo.Generator, cfg config.Server, site config.Sitemap, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet},
	}))

	s := &Server{
		echo:     e,
		store:    store,
		exporter: exporter,
		seo:      gen,
		cfg:      cfg,
		site:     site,
		logger:   logger,
	}

	e.GET("/api/articles", s.listArticles)
	e.GET("/api/articles/:id", s.getArticle)
	e.GET("/api/seo", s.siteSEO)
	e.GET("/sitemap.xml", s.sitemapXML)
	e.GET("/sitemap-news.xml", s.newsSitemapXML)
	e.GET("/robots.txt", s.robots)

	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
