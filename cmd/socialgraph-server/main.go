// Command socialgraph-server serves the campus social graph REST API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/campusgraph/socialgraph/internal/api"
	"github.com/campusgraph/socialgraph/internal/cache"
	"github.com/campusgraph/socialgraph/internal/config"
	"github.com/campusgraph/socialgraph/internal/db"
	"github.com/campusgraph/socialgraph/internal/db/migrations"
	"github.com/campusgraph/socialgraph/internal/dbpool"
	"github.com/campusgraph/socialgraph/internal/metrics"
	"github.com/campusgraph/socialgraph/internal/service"
	"github.com/campusgraph/socialgraph/internal/store"
	"github.com/campusgraph/socialgraph/internal/traversal"
	"github.com/campusgraph/socialgraph/internal/ws"
)

const (
	startTimeout    = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	app := fx.New(
		fx.NopLogger,
		fx.Supply(log),
		fx.Provide(
			config.Load,
			newPool,
			newStore,
			newCache,
			newEngine,
			newHub,
			newGraphService,
			newRelationshipService,
			newRouter,
		),
		fx.Invoke(configureLogger, registerServers),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	if err := app.Start(startCtx); err != nil {
		log.WithError(err).Fatal("failed to start")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.WithField("signal", s.String()).Info("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.WithError(err).Error("shutdown incomplete")
	}
}

func configureLogger(log *logrus.Logger, cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	log.SetLevel(level)
	log.WithFields(logrus.Fields{
		"version": config.Version,
		"addr":    cfg.Addr(),
		"metrics": cfg.MetricsAddr(),
		"db":      cfg.DatabaseURL,
		"redis":   cfg.RedisURL.Value() != "",
	}).Info("starting socialgraph server")

	return nil
}

// newPool connects to Postgres and applies pending migrations before anything reads the schema.
func newPool(lc fx.Lifecycle, cfg *config.Config, log *logrus.Logger) (*dbpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		pool.Close()
		return nil, err
	}

	if err := metrics.RegisterPoolStats(pool.Stats); err != nil {
		log.WithError(err).Warn("pool metrics unavailable")
	}

	lc.Append(fx.StopHook(pool.Close))

	return pool, nil
}

func newStore(pool *dbpool.Pool, log *logrus.Logger) *store.Store {
	return store.New(store.Base{Pool: pool, Log: log})
}

func newCache(lc fx.Lifecycle, cfg *config.Config, st *store.Store, log *logrus.Logger) (*cache.Cache, error) {
	opts := []cache.Option{cache.WithSize(cfg.CacheSize), cache.WithTTL(cfg.CacheTTL)}

	if url := cfg.RedisURL.Value(); url != "" {
		rdb, err := cache.NewRedisClient(url)
		if err != nil {
			return nil, err
		}

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := rdb.Ping(ctx).Err(); err != nil {
					log.WithError(err).Warn("redis unreachable, serving from the local cache tier")
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return closeRedis(rdb)
			},
		})

		opts = append(opts, cache.WithRedis(rdb))
	}

	return cache.New(st, log, opts...), nil
}

func closeRedis(rdb redis.UniversalClient) error {
	if err := rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

func newEngine(cfg *config.Config) *traversal.Engine {
	return traversal.New(traversal.WithFetchConcurrency(cfg.FetchConcurrency))
}

func newGraphService(
	engine *traversal.Engine,
	c *cache.Cache,
	st *store.Store,
	cfg *config.Config,
	log *logrus.Logger,
) *service.GraphService {
	return service.NewGraphService(
		engine,
		func() traversal.Accessor { return c.Session() },
		st.Graph,
		service.GraphConfig{MaxDepth: cfg.TraversalMaxDepth, Timeout: cfg.TraversalTimeout},
		log,
	)
}

// newHub runs the event stream hub for the lifetime of the app.
func newHub(lc fx.Lifecycle, log *logrus.Logger) *ws.Hub {
	hub := ws.NewHub(log)
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go hub.Run(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			hub.Shutdown()
			cancel()
			return nil
		},
	})

	return hub
}

func newRelationshipService(
	st *store.Store,
	c *cache.Cache,
	hub *ws.Hub,
	cfg *config.Config,
	log *logrus.Logger,
) *service.RelationshipService {
	return service.NewRelationshipService(st.Relationships, c, cfg.StrengthDecayRate, log).WithPublisher(hub)
}

func newRouter(
	cfg *config.Config,
	log *logrus.Logger,
	pool *dbpool.Pool,
	st *store.Store,
	graph *service.GraphService,
	rels *service.RelationshipService,
	hub *ws.Hub,
) http.Handler {
	return api.NewRouter(&api.RouterDeps{
		Log:           log,
		DB:            pool,
		Counter:       st.Graph,
		Graph:         graph,
		Relationships: rels,
		Hub:           hub,
		CORSOrigins:   cfg.CORSOrigins,
		Version:       config.Version,
	})
}

// registerServers starts the API listener and the separate metrics listener.
func registerServers(lc fx.Lifecycle, cfg *config.Config, handler http.Handler, log *logrus.Logger) {
	apiSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.TraversalTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	for _, srv := range []*http.Server{apiSrv, metricsSrv} {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					log.WithField("addr", srv.Addr).Info("listening")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.WithError(err).WithField("addr", srv.Addr).Fatal("server failed")
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
		})
	}
}
