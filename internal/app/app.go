// Package app wires the adapters and the core services into a runnable
// storefront service.
package app

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/cloudinary"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/restapi"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/retry"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/sr"
	"golang.org/x/text/language"
)

type serdes struct {
	catalogEvents  schema.Serde
	recentlyViewed schema.Serde
}

type outbound struct {
	backend        restapi.Client
	uploader       port.ImageUploader
	sqldb          *storage.SQLDB
	products       *storage.ProductsRepository
	redis          *redis.Client
	eventsProducer *kafka.CatalogEventsProducer
	recentlyViewed port.RecentlyViewedStore
}

type coreService struct {
	cache      *service.CatalogCache
	storefront service.Storefront
	admin      service.Admin
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	tlsConfig  *tls.Config
	serdes     serdes
	outbound   outbound
	service    coreService
	components []port.BackgroundComponent
	background service.Background
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initTLS()
	app.initSerdes()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initTLS() {
	const op = "App.initTLS"

	files := app.cfg.Broker.TLS
	if !files.Enabled() {
		return
	}
	tlsConfig, err := adapter.MakeTLSConfig(files.CAFile, files.CertFile, files.KeyFile)
	if err != nil {
		app.fallDown(op, err)
	}
	kafka.ApplyGokaTLS(tlsConfig)
	app.tlsConfig = tlsConfig
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	if !app.cfg.Broker.Enabled() {
		return
	}

	srOpts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if app.tlsConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.tlsConfig))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)
	topics := app.cfg.Broker.Topics

	catalogEventsSerde, err := schema.NewSerdeCatalogEventV1(
		app.ctx,
		schema.SubjectOpt(schema.Subject(topics.CatalogEvents)),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	recentlyViewedSerde, err := schema.NewSerdeRecentlyViewedV1(
		app.ctx,
		schema.SubjectOpt(schema.Subject(topics.ProductViews)),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.catalogEvents = catalogEventsSerde
	app.serdes.recentlyViewed = recentlyViewedSerde
}

func (app *App) initOutboundAdapters() {
	app.initBackend()
	app.initUploader()
	app.initSQLDB()
	app.initEventsProducer()
	app.initRecentlyViewed()
}

func (app *App) initBackend() {
	const op = "App.initBackend"

	cfg := app.cfg.Backend
	client, err := restapi.NewClient(cfg.URL,
		restapi.HTTPClientOpt(&http.Client{Timeout: cfg.Timeout}),
		restapi.RetryOpt(retry.RetryConfig{
			MaxAttempts: cfg.Retries,
			Backoff:     retry.ExponentialBackoff(100 * time.Millisecond),
		}),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.backend = client
}

func (app *App) initUploader() {
	const op = "App.initUploader"

	cfg := app.cfg.Cloudinary
	if cfg.CloudName == "" {
		slog.Warn("image uploads are disabled", "op", op)
		return
	}
	uploader, err := cloudinary.NewUploader(cfg.CloudName, cfg.UploadPreset,
		cloudinary.FolderOpt(cfg.Folder),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.uploader = uploader
}

func (app *App) initSQLDB() {
	const op = "App.initSQLDB"

	if app.cfg.SQLDB == "" {
		return
	}
	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	products := storage.NewProductsRepository(sqldb)

	app.outbound.sqldb = &sqldb
	app.outbound.products = &products
}

func (app *App) initEventsProducer() {
	const op = "App.initEventsProducer"

	if !app.cfg.Broker.Enabled() {
		return
	}
	cl, err := kafka.NewProducerClient(app.ctx,
		app.cfg.Broker.SeedBrokers, app.cfg.Broker.Topics.CatalogEvents, app.tlsConfig,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	producer, err := kafka.NewCatalogEventsProducer(
		kafka.ProducerClientOpt(cl),
		kafka.ProducerEncoderOpt(app.serdes.catalogEvents),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.eventsProducer = &producer
}

func (app *App) initRecentlyViewed() {
	const op = "App.initRecentlyViewed"

	switch app.cfg.RecentlyViewed.Store {
	case config.StoreRedis:
		cfg := app.cfg.Redis
		rdb, err := storage.NewRedisClient(app.ctx, cfg.Addr, cfg.Password, cfg.DB)
		if err != nil {
			app.fallDown(op, err)
		}
		app.outbound.redis = rdb
		app.outbound.recentlyViewed = storage.NewRedisRecentlyViewed(rdb,
			storage.RedisTTLOpt(cfg.TTL),
		)

	case config.StoreKafka:
		broker := app.cfg.Broker
		table, err := kafka.NewRecentlyViewedTable(
			broker.SeedBrokers,
			broker.Topics.ProductViews,
			broker.Consumers.RecentlyViewedGroup,
			app.serdes.recentlyViewed,
		)
		if err != nil {
			app.fallDown(op, err)
		}
		processor, err := kafka.NewRecentlyViewedProcessor(
			broker.SeedBrokers,
			broker.Topics.ProductViews,
			broker.Consumers.RecentlyViewedGroup,
			app.serdes.recentlyViewed,
		)
		if err != nil {
			app.fallDown(op, err)
		}
		app.components = append(app.components, processor, table)
		app.outbound.recentlyViewed = table

	default:
		app.outbound.recentlyViewed = storage.NewMemoryRecentlyViewed()
	}
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	backend := app.outbound.backend

	var source port.CatalogSource = backend
	if app.cfg.Catalog.Source == config.CatalogSourceSnapshot {
		if app.outbound.products == nil {
			app.fallDown(op, errors.New("snapshot source requires sql_db"))
		}
		source = service.NewSnapshotSource(*app.outbound.products, backend)
	}

	collation, err := language.Parse(app.cfg.Catalog.Collation)
	if err != nil {
		app.fallDown(op, err)
	}
	deriver := catalog.NewDeriver(catalog.NewPipeline(collation), app.cfg.Catalog.MemoSize)
	cache := service.NewCatalogCache(source, deriver)

	var events port.CatalogEventsProducer
	if app.outbound.eventsProducer != nil {
		events = app.outbound.eventsProducer
	}

	app.service.cache = cache
	app.service.storefront = service.NewStorefront(
		cache, backend, backend, backend,
		app.outbound.recentlyViewed,
		app.cfg.RecentlyViewed.Limit,
	)
	app.service.admin = service.NewAdmin(
		service.Backends{
			Products:   backend,
			Categories: backend,
			Brands:     backend,
			Blog:       backend,
			Orders:     backend,
		},
		app.outbound.uploader,
		events,
		cache,
	)

	app.initEventsConsumer()
	app.background = service.NewBackground(
		cache, app.cfg.Catalog.RefreshInterval, app.components...,
	)
}

// initEventsConsumer keeps the snapshot storage in sync with the catalog
// events of every instance.
func (app *App) initEventsConsumer() {
	const op = "App.initEventsConsumer"

	if !app.cfg.Broker.Enabled() || app.outbound.products == nil {
		return
	}

	broker := app.cfg.Broker
	cl, err := kafka.NewConsumerClient(
		broker.SeedBrokers,
		broker.Topics.CatalogEvents,
		broker.Consumers.CatalogEventsGroup,
		app.tlsConfig,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	consumer, err := kafka.NewCatalogEventsConsumer(
		kafka.ConsumerClientOpt(cl),
		kafka.ConsumerDecoderOpt(app.serdes.catalogEvents),
		kafka.ConsumerApplierOpt(
			service.NewCatalogEvents(*app.outbound.products, app.service.cache),
		),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.components = append(app.components, consumer)
}

func (app *App) initInboundAdapters() {
	mux := http.NewServeMux()
	httphandler.RegisterStorefront(mux, app.service.storefront)
	httphandler.RegisterAdmin(mux, app.service.admin)

	handler := httphandler.AllowJSON(mux)
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler,
		httphandler.HandlerTimeoutOpt(app.cfg.HTTPHandlerTimeout),
	)
}

// Run starts the background components, warms up the catalog and starts
// the http server.
func (app *App) Run(stopFn context.CancelFunc) {
	const op = "App.Run"
	log := slog.With("op", op)

	app.background.Run(app.ctx, stopFn)

	if err := app.service.cache.Refresh(app.ctx); err != nil {
		log.Warn("catalog warm up failed, loading on first request", "err", err)
	}

	go app.httpServer.Run(stopFn)

	log.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.background.Close()

	if app.outbound.eventsProducer != nil {
		app.outbound.eventsProducer.Close()
	}
	if app.outbound.redis != nil {
		if err := app.outbound.redis.Close(); err != nil {
			slog.Error("failed to close redis client", "err", err)
		}
	}
	if app.outbound.sqldb != nil {
		app.outbound.sqldb.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
