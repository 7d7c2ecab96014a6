// @title			Notes API
// @version		1.0
// @description	Notes CRUD backend with sliding-window rate limiting.
// @BasePath		/api
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"notes/backend/internal/config"
	"notes/backend/internal/db"
	"notes/backend/internal/handler"
	gh "notes/backend/internal/http"
	"notes/backend/internal/limiter"
	"notes/backend/internal/metrics"
	"notes/backend/internal/repository"
	"notes/backend/internal/scheduler"
	"notes/backend/internal/service"
	"notes/backend/pkg/logger"
	"notes/backend/pkg/snowflake"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := run(cfg); err != nil {
		logger.Error("server exited", "module", "main", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := snowflake.Init(cfg.NodeID); err != nil {
		return fmt.Errorf("init snowflake: %w", err)
	}

	repo, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New()
	if err := m.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l, backend, closeLimiter, err := openLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	keyFn := limiter.GlobalKey(cfg.RateKey)
	if cfg.RateKeyMode == config.KeyModeIP {
		keyFn = limiter.ClientIPKey(cfg.RateKey)
	}

	noteHandler := handler.NewNoteHandler(service.NewNoteService(repo))
	e := gh.NewRouter(noteHandler, gh.RouterOptions{
		StaticDir:     cfg.StaticDir,
		EnableSwagger: cfg.Swagger,
		Production:    cfg.IsProduction(),
		CORSOrigin:    cfg.CORSOrigin,
		Limiter:       limiter.Instrument(l, backend, m),
		KeyFunc:       keyFn,
		TrustProxy:    cfg.TrustProxy,
		Metrics:       m,
		Gatherer:      reg,
		Health:        repo,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	logger.Info("server starting",
		"module", "main",
		"addr", cfg.Addr,
		"env", cfg.Env,
		"store", cfg.Store,
		"limiter", backend,
		"rate_limit", cfg.RateLimit,
		"rate_window", cfg.RateWindow,
		"rate_key_mode", cfg.RateKeyMode,
		"node_id", cfg.NodeID,
		"max_conns", cfg.MaxConns,
	)

	ln, err := listen(cfg)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down", "module", "main")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// listen binds cfg.Addr and caps concurrent connections when NOTES_MAX_CONNS is set.
func listen(cfg config.Config) (net.Listener, error) {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	if cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}
	return ln, nil
}

func openStore(cfg config.Config) (repository.NoteRepository, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		gdb, err := db.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("postgres handle: %w", err)
		}
		if err := repository.MigrateNotes(context.Background(), gdb); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return repository.NewGormNoteRepository(gdb), func() { _ = sqlDB.Close() }, nil
	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return repository.NewNoteRepository(database), func() { _ = database.Close() }, nil
	}
}

// openLimiter connects to Redis when NOTES_REDIS_URL is set and otherwise
// falls back to the in-process limiter with a janitor.
func openLimiter(ctx context.Context, cfg config.Config) (limiter.Limiter, string, func(), error) {
	limitCfg := limiter.Config{Capacity: cfg.RateLimit, Window: cfg.RateWindow}

	if cfg.RedisURL == "" {
		mem := limiter.NewMemoryLimiter(limitCfg, nil)
		janitor := scheduler.New("limiter-janitor", func(ctx context.Context) error {
			removed, err := mem.Cleanup(ctx)
			if removed > 0 {
				logger.Debug("rate limit keys expired", "module", "limiter", "removed", removed)
			}
			return err
		}, cfg.JanitorEvery)
		janitor.Start()
		logger.Warn("NOTES_REDIS_URL not set, rate limits are per process", "module", "main")
		return mem, "memory", janitor.Stop, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, "", nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.ContextTimeoutEnabled = true
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.RateTimeout)
	err = rdb.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		_ = rdb.Close()
		return nil, "", nil, fmt.Errorf("redis ping: %w", err)
	}

	rl, err := limiter.NewRedisLimiter(rdb, limitCfg, limiter.WithTimeout(cfg.RateTimeout))
	if err != nil {
		_ = rdb.Close()
		return nil, "", nil, err
	}
	return rl, "redis", func() { _ = rdb.Close() }, nil
}
