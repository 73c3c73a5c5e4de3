package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/imgkeeper/internal/channel/adapters/line"
	"github.com/memohai/imgkeeper/internal/channel/inbound"
	"github.com/memohai/imgkeeper/internal/config"
	"github.com/memohai/imgkeeper/internal/dedup"
	"github.com/memohai/imgkeeper/internal/handlers"
	"github.com/memohai/imgkeeper/internal/healthcheck"
	inboundchecker "github.com/memohai/imgkeeper/internal/healthcheck/checkers/inbound"
	redischecker "github.com/memohai/imgkeeper/internal/healthcheck/checkers/redis"
	storagechecker "github.com/memohai/imgkeeper/internal/healthcheck/checkers/storage"
	"github.com/memohai/imgkeeper/internal/logger"
	"github.com/memohai/imgkeeper/internal/media"
	"github.com/memohai/imgkeeper/internal/media/providers/localfs"
	"github.com/memohai/imgkeeper/internal/namecache"
	"github.com/memohai/imgkeeper/internal/notify"
	"github.com/memohai/imgkeeper/internal/redisclient"
	"github.com/memohai/imgkeeper/internal/resolver"
	"github.com/memohai/imgkeeper/internal/schedule"
	"github.com/memohai/imgkeeper/internal/server"
	"github.com/memohai/imgkeeper/internal/version"
)

const redisConnectTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(configPath(cmd))
		},
	}
}

func runServe(cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			provideLogger,
			provideRedis,
			provideNameCache,
			provideDedup,
			provideLineClient,
			provideStorage,
			provideResolver,
			provideSaver,
			provideNotifier,
			provideDispatcher,
			provideSweeper,
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideImagesHandler),
			provideServerHandler(handlers.NewMetricsHandler),
			provideServerHandler(provideReadyHandler),
			provideServer,
		),
		fx.Invoke(
			startDispatcher,
			startSweeper,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func resolverOptions(cfg config.Config) resolver.Options {
	return resolver.Options{
		ResolveRoomNames: cfg.Policy.ResolveRoomNames,
		FallbackShortID:  cfg.Policy.FallbackShortID,
		Timeout:          cfg.Line.Timeout(),
	}
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

// provideRedis returns nil when no component uses the redis backend.
func provideRedis(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	if !cfg.UsesRedis() {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()
	client, err := redisclient.Open(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
	return client, nil
}

func provideNameCache(cfg config.Config, rdb *redis.Client) namecache.Cache {
	if cfg.Cache.Backend == "redis" && rdb != nil {
		return namecache.NewRedis(rdb, cfg.Redis.KeyPrefix, cfg.Cache.TTLDuration())
	}
	return namecache.NewMemory(cfg.Cache.TTLDuration())
}

func provideDedup(cfg config.Config, rdb *redis.Client) dedup.Store {
	if !cfg.Dedup.Enabled {
		return dedup.Nop{}
	}
	if cfg.Dedup.Backend == "redis" && rdb != nil {
		return dedup.NewRedis(rdb, cfg.Redis.KeyPrefix, cfg.Dedup.TTLDuration())
	}
	return dedup.NewMemory(cfg.Dedup.TTLDuration(), nil)
}

func provideLineClient(cfg config.Config) (*line.Client, error) {
	return line.NewClient(cfg.Line.ChannelAccessToken)
}

func provideStorage(cfg config.Config) (*localfs.Provider, error) {
	return localfs.New(cfg.Storage.ImagesDir)
}

func provideResolver(log *slog.Logger, cfg config.Config, client *line.Client, cache namecache.Cache) *resolver.Resolver {
	return resolver.New(log, client, cache, resolverOptions(cfg))
}

func provideSaver(log *slog.Logger, cfg config.Config, res *resolver.Resolver, client *line.Client, storage *localfs.Provider) *media.Saver {
	return media.NewSaver(log, res, client, storage, media.SaverOptions{
		MaxBytes:     cfg.Storage.MaxImageBytes,
		FetchTimeout: cfg.Line.Timeout(),
	})
}

func provideNotifier(log *slog.Logger, cfg config.Config, client *line.Client) *notify.Notifier {
	return notify.New(log, client, notify.Options{
		AdminID: cfg.Line.AdminUserID,
		Timeout: cfg.Line.Timeout(),
	})
}

func provideDispatcher(log *slog.Logger, cfg config.Config, saver *media.Saver, res *resolver.Resolver, notifier *notify.Notifier, seen dedup.Store) *inbound.Dispatcher {
	return inbound.NewDispatcher(log, saver, res, notifier, seen, inbound.Options{
		Workers:   cfg.Inbound.Workers,
		QueueSize: cfg.Inbound.QueueSize,
		Policy: inbound.Policy{
			ReplyOnPrivate:     cfg.Policy.ReplyOnPrivate,
			NotifyAdminAlways:  cfg.Policy.NotifyAdminAlways,
			NotifyAdminOnError: cfg.Policy.NotifyAdminOnError,
		},
	})
}

// provideSweeper schedules sweeps for the in-memory stores; redis entries
// expire natively.
func provideSweeper(log *slog.Logger, cfg config.Config, cache namecache.Cache, seen dedup.Store) (*schedule.Sweeper, error) {
	targets := map[string]schedule.Sweepable{}
	if s, ok := cache.(schedule.Sweepable); ok {
		targets["names"] = s
	}
	if s, ok := seen.(schedule.Sweepable); ok {
		targets["dedup"] = s
	}
	return schedule.NewSweeper(log, cfg.Cache.SweepDuration(), targets)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, dispatcher *inbound.Dispatcher) *line.WebhookHandler {
	return line.NewWebhookHandler(log, cfg.Line.ChannelSecret, dispatcher)
}

func provideImagesHandler(log *slog.Logger, cfg config.Config, storage *localfs.Provider) *handlers.ImagesHandler {
	return handlers.NewImagesHandler(log, storage, cfg.Server.ViewToken)
}

func provideReadyHandler(log *slog.Logger, storage *localfs.Provider, rdb *redis.Client, dispatcher *inbound.Dispatcher) *handlers.ReadyHandler {
	checkers := []healthcheck.Checker{
		storagechecker.NewChecker(log, storage.Root()),
		inboundchecker.NewChecker(dispatcher),
	}
	if rdb != nil {
		checkers = append(checkers, redischecker.NewChecker(log, rdb))
	}
	return handlers.NewReadyHandler(log, checkers)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.ServerHandlers...)
}

func startDispatcher(lc fx.Lifecycle, dispatcher *inbound.Dispatcher) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error { dispatcher.Start(ctx); return nil },
		OnStop:  func(stopCtx context.Context) error { defer cancel(); return dispatcher.Shutdown(stopCtx) },
	})
}

func startSweeper(lc fx.Lifecycle, sweeper *schedule.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error { sweeper.Start(); return nil },
		OnStop:  func(ctx context.Context) error { return sweeper.Stop(ctx) },
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting imgkeeper", slog.String("version", version.GetInfo()), slog.String("addr", srv.Addr()))
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
