package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"

	config "github.com/stylefeed/go-backend/internal/cfg"
	v1Http "github.com/stylefeed/go-backend/internal/delivery/v1/http"
	"github.com/stylefeed/go-backend/internal/infrastructure/discovery"
	"github.com/stylefeed/go-backend/internal/infrastructure/kafka"
	"github.com/stylefeed/go-backend/internal/infrastructure/openai"
	"github.com/stylefeed/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/stylefeed/go-backend/internal/repository/pgdb/converter"
	qdrantRepo "github.com/stylefeed/go-backend/internal/repository/qdrant"
	"github.com/stylefeed/go-backend/internal/repository/redis"
	redisConv "github.com/stylefeed/go-backend/internal/repository/redis/converter"
	"github.com/stylefeed/go-backend/internal/usecase"
	"github.com/stylefeed/go-backend/pkg/clients"
	"github.com/stylefeed/go-backend/pkg/closer"
	"github.com/stylefeed/go-backend/pkg/e"
	"github.com/stylefeed/go-backend/pkg/logger"
	"github.com/stylefeed/go-backend/pkg/postgres"
)

func Run() {
	logger := logger.NewSlogLogger()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	appCloser := closer.NewCloser(5 * time.Second)

	db, err := initPGDB(logger, cfg)
	if err != nil {
		logger.Errorf(err, "failed to initialize database")
		os.Exit(1)
	}
	appCloser.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	itemConv := pgdbConv.NewSavedItemConverterImpl()
	recConv := pgdbConv.NewRecommendationConverterImpl()
	outboxConv := pgdbConv.NewOutboxEventConverterImpl()
	infoConv := redisConv.NewRecommendationInfoConverterImpl()

	trGetter := trmpgx.DefaultCtxGetter
	trManager := manager.Must(trmpgx.NewDefaultFactory(db.Pool))

	savedItemRepo := pgdb.NewSavedItemRepo(db.Pool, trGetter, itemConv, logger)
	recRepo := pgdb.NewRecommendationRepo(db.Pool, trGetter, recConv, logger)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, trGetter, outboxConv, logger)

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		logger.Errorf(err, "failed to initialize qdrant")
		os.Exit(1)
	}
	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		qdrantCancel()
		logger.Errorf(err, "failed to initialize qdrant")
		os.Exit(1)
	}
	qdrantCancel()
	appCloser.Add(func(ctx context.Context) error {
		return qdrantClient.Client.Close()
	})

	embRepo := qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(redisCtx); err != nil {
		redisCancel()
		logger.Errorf(err, "failed to connect to redis")
		os.Exit(1)
	}
	redisCancel()
	appCloser.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})

	cacheRepo := redis.NewCacheRepo(redisClient, infoConv, cfg.Redis, logger)

	openaiClient := openai.NewClient(cfg.OpenAI, logger)
	discoveryClient := discovery.NewClient(cfg.Discovery, logger)

	producer, err := kafka.NewProducer(logger, cfg.Kafka)
	if err != nil {
		logger.Errorf(err, "failed to initialize kafka producer")
		os.Exit(1)
	}
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		logger.Warnf("failed to ensure kafka topic, events will retry: %v", err)
	}
	appCloser.Add(func(ctx context.Context) error {
		return producer.Close()
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	worker := kafka.NewOutboxWorker(outboxRepo, logger, producer, db.Dsn)
	worker.Start(workerCtx)
	appCloser.Add(func(ctx context.Context) error {
		workerCancel()
		worker.Stop()
		return nil
	})

	sources, err := buildSources(cfg, savedItemRepo, openaiClient, discoveryClient, logger)
	if err != nil {
		logger.Errorf(err, "failed to build candidate sources")
		os.Exit(1)
	}

	recUC := usecase.NewRecommendationUC(
		savedItemRepo,
		recRepo,
		outboxRepo,
		cacheRepo,
		embRepo,
		trManager,
		openaiClient,
		sources,
		cfg.Recommend,
		logger,
	)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, cfg.Http, logger)
	router.Init(recUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)
	appCloser.Add(func(ctx context.Context) error {
		return httpSrv.Stop(ctx)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server started on port %s", cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown: LIFO, сервер закрывается первым ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := appCloser.Close(shutdownCtx); err != nil {
		logger.Warnf("shutdown finished with errors: %v", err)
	}

	logger.Infof("Application shutdown complete")
	if appErr != nil {
		os.Exit(1)
	}
}

// buildSources собирает источники кандидатов в порядке, заданном конфигурацией.
func buildSources(
	cfg *config.Config,
	savedItemRepo usecase.SavedItemRepository,
	openaiClient *openai.Client,
	discoveryClient *discovery.Client,
	logger logger.Logger,
) ([]usecase.CandidateSource, error) {
	sources := make([]usecase.CandidateSource, 0, len(cfg.Recommend.Strategies))
	for _, name := range cfg.Recommend.Strategies {
		switch name {
		case usecase.SourceCorpus:
			sources = append(sources, usecase.NewCorpusSimilaritySource(savedItemRepo, openaiClient, cfg.Recommend, logger))
		case usecase.SourceGenerative:
			sources = append(sources, usecase.NewGenerativeSource(openaiClient, logger))
		case usecase.SourceDiscovery:
			sources = append(sources, usecase.NewDiscoverySource(discoveryClient, cfg.Discovery, logger))
		default:
			return nil, fmt.Errorf("unknown recommendation strategy: %s", name)
		}
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one recommendation strategy is required")
	}

	return sources, nil
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
