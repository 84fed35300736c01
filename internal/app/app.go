// Package app wires configuration, logging, storage and the Telegram runtime.
package app

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/jmoiron/sqlx"
	redisbackend "github.com/redis/go-redis/v9"

	coreconfig "percentbot/core/config"
	coredatabase "percentbot/core/database"
	"percentbot/core/logger"
	coretelegram "percentbot/core/telegram"
	tgsender "percentbot/core/telegram/sender"
	"percentbot/core/telegram/state"
	"percentbot/internal/bot"
	"percentbot/internal/metrics"
	"percentbot/internal/stats"
	"percentbot/internal/storage"
)

// App holds the bootstrapped application.
type App struct {
	cfg      *coreconfig.Config
	db       *sqlx.DB
	redis    *redisbackend.Client
	store    *storage.Store
	sessions state.Manager
	svc      *bot.Service
}

// Bootstrap initializes logging, storage and services in dependency order.
func Bootstrap(cfg *coreconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("app: logger init failed: %w", err)
	}

	if err := coredatabase.RunMigrations(cfg.Database); err != nil {
		return nil, fmt.Errorf("app: migrations failed: %w", err)
	}

	db, err := coredatabase.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: database initialization failed: %w", err)
	}

	store := storage.New(db)
	seedCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.EnsureDefaults(seedCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("app: seed failed: %w", err)
	}

	a := &App{
		cfg:   cfg,
		db:    db,
		store: store,
	}
	a.sessions = a.buildSessions()
	a.svc = bot.NewService(store, stats.NewEngine(store), a.sessions, cfg.Telegram.AdminID)

	return a, nil
}

func (a *App) buildSessions() state.Manager {
	sess := a.cfg.Session
	if sess.Backend != coreconfig.SessionBackendRedis {
		return state.NewMemoryManager()
	}

	a.redis = redisbackend.NewClient(&redisbackend.Options{
		Addr:     sess.RedisAddr,
		Password: sess.RedisPass,
		DB:       sess.RedisDB,
	})
	var opts []state.RedisOption
	if sess.TTLSeconds > 0 {
		opts = append(opts, state.WithTTL(time.Duration(sess.TTLSeconds)*time.Second))
	}
	logger.L.Info("redis session backend",
		slog.String("event", "session.backend"),
		slog.String("mode", "redis"),
		slog.String("host", sess.RedisAddr),
		slog.Int("db", sess.RedisDB),
	)
	return state.NewRedisManagerFromClient(a.redis, opts...)
}

// CoreConfig exposes the embedded core configuration.
func (a *App) CoreConfig() *coreconfig.Config {
	return a.cfg
}

// Service exposes the bot service, mainly for tests.
func (a *App) Service() *bot.Service {
	return a.svc
}

// TelegramRunOptions assembles the full runtime: registry, routes,
// middleware chain, async sender and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := bot.BuildRegistry(a.svc)
	routes := bot.Routes(a.svc, reg, a.cfg)

	mws := coretelegram.DefaultMiddlewares(a.cfg, nil)
	mws = append(mws, coretelegram.Middleware{
		Name: "prometheus",
		Use:  metrics.UpdatesMiddleware,
	})

	var metricsCancel context.CancelFunc

	return coretelegram.RunOptions{
		Config:   a.cfg,
		Registry: reg,
		DispatcherOptions: tgsender.Options{
			MaxRetries: 2,
			OnFailure:  metrics.IncSendFailure,
		},
		Middlewares: mws,
		Routes:      routes,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			if a.cfg.Metrics.Enabled {
				var mctx context.Context
				mctx, metricsCancel = context.WithCancel(ctx)
				go func() {
					if err := metrics.Serve(mctx, a.cfg.Metrics.Listen); err != nil {
						logger.L.Error("metrics listener failed",
							slog.String("event", "metrics.fail"),
							slog.String("err", err.Error()),
						)
					}
				}()
			}
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			if metricsCancel != nil {
				metricsCancel()
			}
			return a.Close()
		},
	}, nil
}

// Close releases storage and session backends.
func (a *App) Close() error {
	var firstErr error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			firstErr = err
		}
		a.redis = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.db = nil
	}
	return firstErr
}
