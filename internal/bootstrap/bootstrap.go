package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/order-insights/internal/config"
	"github.com/kirillkom/order-insights/internal/core/ports"
	"github.com/kirillkom/order-insights/internal/core/usecase"
	"github.com/kirillkom/order-insights/internal/infrastructure/export/excel"
	"github.com/kirillkom/order-insights/internal/infrastructure/queue/nats"
	"github.com/kirillkom/order-insights/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/order-insights/internal/infrastructure/resilience"
	"github.com/kirillkom/order-insights/internal/infrastructure/source/storefront"
	"github.com/kirillkom/order-insights/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue ports.SyncQueue
	Store ports.DocumentStore

	SyncUC     ports.SnapshotSynchronizer
	InsightsUC ports.InsightsReader
	ReportUC   ports.ReportBuilder

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	store := postgres.NewDocumentStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	categories, err := config.LoadCategories(cfg.CategoriesPath)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init sync queue: %w", err)
	}

	source := storefront.New(cfg.StorefrontURL, cfg.StorefrontToken, storefront.Options{
		RequestsPerSecond:  cfg.StorefrontRPS,
		Burst:              cfg.StorefrontBurst,
		ResilienceExecutor: executor,
	})

	archive, err := localfs.New(cfg.ReportArchivePath)
	if err != nil {
		return nil, fmt.Errorf("init report archive: %w", err)
	}

	categorizer := usecase.NewCategorizer(categories)
	syncUC := usecase.NewSyncUseCase(source, store, categorizer)
	insightsUC := usecase.NewInsightsUseCase(store)
	reportUC := usecase.NewReportUseCase(store, excel.NewRenderer(), archive)

	return &App{
		Config: cfg,
		Queue:  queue,
		Store:  store,

		SyncUC:     syncUC,
		InsightsUC: insightsUC,
		ReportUC:   reportUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
