package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/scoreboard/internal/auth"
	"github.com/MrSnakeDoc/scoreboard/internal/config"
	"github.com/MrSnakeDoc/scoreboard/internal/httpserver"
	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scoreboard/internal/index"
	"github.com/MrSnakeDoc/scoreboard/internal/logger"
	"github.com/MrSnakeDoc/scoreboard/internal/metrics"
	"github.com/MrSnakeDoc/scoreboard/internal/redis"
	"github.com/MrSnakeDoc/scoreboard/internal/scheduler"
	"github.com/MrSnakeDoc/scoreboard/internal/scoring"
	redisstore "github.com/MrSnakeDoc/scoreboard/internal/store/redis"
	"github.com/MrSnakeDoc/scoreboard/internal/version"
)

// backend is what both store implementations provide.
type backend interface {
	scoring.Reader
	scheduler.Catalog
	deps.Pinger
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	provisioner *scheduler.Provisioner
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	a := &App{cfg: cfg, logger: loggerClient}

	var store backend
	switch cfg.Store {
	case config.StoreMemory:
		loggerClient.Warn("using in-memory store, scores are lost on restart")
		store = index.NewMemoryLedger()
	default:
		// Fail fast if Redis never comes up.
		client, err := redis.Connect(context.Background(), redis.Options{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
		store = redisstore.NewStore(client)
	}

	m := metrics.New()
	engine := scoring.NewEngine(store, loggerClient.With(logger.String("component", "scoring")), m, cfg.HistoryWindow)
	tokens := auth.NewTokens(cfg.AdminToken)

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Build:        version.Get(),
		TimeNow:      time.Now,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		Engine:       engine,
		Store:        store,
		StoreKind:    cfg.Store,
		Tokens:       tokens,
		Metrics:      m,
	}

	if cfg.CompetitionFile != "" {
		trigger := make(chan struct{}, 1)
		a.provisioner = scheduler.NewProvisioner(
			cfg.CompetitionFile,
			store,
			tokens,
			m,
			loggerClient.With(logger.String("component", "provisioner")),
			cfg.ReloadInterval,
			cfg.WatchFile,
			trigger,
		)
		d.Provisioner = a.provisioner
		d.ReloadTrigger = trigger
	} else {
		loggerClient.Info("no competition file configured, provisioning disabled")
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting scoreboard v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("scoreboard %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.closeRedis()

	if a.provisioner != nil {
		if err := a.provisioner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start provisioner: %w", err)
		}
		a.logger.Info("provisioner started",
			logger.String("file", a.cfg.CompetitionFile),
			logger.Duration("interval", a.cfg.ReloadInterval),
			logger.Bool("watch", a.cfg.WatchFile))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	if a.provisioner != nil {
		g.Go(func() error { return a.provisioner.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.logger.Info("✅ scoreboard stopped cleanly")
	return nil
}

func (a *App) closeRedis() {
	if a.redisClient == nil {
		return
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Warn("failed to close redis", logger.Error(err))
		return
	}
	a.logger.Info("✅ Redis closed cleanly")
}
