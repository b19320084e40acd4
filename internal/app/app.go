package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"NewsIngest/internal/config"
	"NewsIngest/internal/feed"
	"NewsIngest/internal/infrastructure/fetcher"
	"NewsIngest/internal/infrastructure/parser"
	"NewsIngest/internal/infrastructure/rewrite"
	"NewsIngest/internal/infrastructure/scheduler"
	"NewsIngest/internal/infrastructure/scraper"
	"NewsIngest/internal/infrastructure/storage"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
	"NewsIngest/internal/seo"
	"NewsIngest/internal/server"
	"NewsIngest/internal/sitemap"
	"NewsIngest/internal/usecase"

	_ "github.com/lib/pq"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	sweepers []*usecase.Sweeper
	server   *server.Server
	db       *sql.DB
	pgStore  *storage.PostgresStore
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := feed.NewRegistry()
	registry.Register(parser.NewRSSParser())
	registry.Register(parser.NewDharitriParser())
	registry.Register(parser.NewOdishaBytesParser())

	source := parser.NewFeedSource(
		fetcher.New(nil),
		registry,
		cfg.Feeds,
		baseLogger.With("component", "source"),
	)

	a := &Application{cfg: cfg, logger: baseLogger}

	store, err := a.buildStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	var rewriter ports.Rewriter
	if cfg.Rewrite.APIKey != "" {
		rewriter = rewrite.NewClient(cfg.Rewrite)
	}

	seoGen := seo.NewGenerator(cfg.Sitemap.SiteURL, cfg.Sitemap.PublicationName, cfg.Sitemap.Keywords)
	exporter := sitemap.NewExporter(cfg.Sitemap.SiteURL, cfg.Sitemap.PublicationName, cfg.Sitemap.Language, cfg.Sitemap.MaxURLs)

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:           source,
		Store:            store,
		Rewriter:         rewriter,
		Extractor:        scraper.NewExtractor(nil),
		SEO:              seoGen,
		Exporter:         exporter,
		Logger:           baseLogger.With("component", "pipeline"),
		MaxContentChars:  cfg.Rewrite.MaxContentChars,
		RewriteBatchSize: cfg.Rewrite.BatchSize,
		SitemapDir:       cfg.Sitemap.OutputDir,
	})

	sweepLogger := baseLogger.With("component", "sweeper")
	a.sweepers = []*usecase.Sweeper{
		usecase.NewSweeper("ingest",
			scheduler.NewIntervalScheduler(cfg.Sweeps.IngestInterval.Std()),
			a.pipeline.Ingest, sweepLogger),
		usecase.NewSweeper("rewrite",
			scheduler.NewIntervalScheduler(cfg.Sweeps.RewriteInterval.Std()),
			a.pipeline.RewritePending, sweepLogger),
		usecase.NewSweeper("export",
			scheduler.NewIntervalScheduler(cfg.Sweeps.ExportInterval.Std()),
			a.pipeline.Export, sweepLogger),
	}

	a.server = server.New(store, exporter, seoGen, cfg.Server, cfg.Sitemap,
		baseLogger.With("component", "server"))

	return a, nil
}

func (a *Application) buildStore(cfg config.Storage) (ports.ArticleStore, error) {
	if cfg.DSN == "" {
		store, err := storage.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	a.db = db
	a.pgStore = storage.NewPostgresStore(db)
	return a.pgStore, nil
}

// Run starts the sweeps and serves the API until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.pgStore != nil {
		if err := a.pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	for _, sweeper := range a.sweepers {
		if err := sweeper.Start(ctx); err != nil {
			return fmt.Errorf("start sweeper: %w", err)
		}
	}

	err := a.server.Start(ctx)

	for _, sweeper := range a.sweepers {
		if stopErr := sweeper.Stop(context.Background()); stopErr != nil {
			a.logger.Error("stop sweeper", "error", stopErr)
		}
	}

	if a.db != nil {
		if closeErr := a.db.Close(); closeErr != nil {
			a.logger.Error("close database", "error", closeErr)
		}
	}

	return err
}
