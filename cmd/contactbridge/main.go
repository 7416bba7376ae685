package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/contactbridge/internal/boot"
	"github.com/memohai/contactbridge/internal/bridge"
	"github.com/memohai/contactbridge/internal/config"
	"github.com/memohai/contactbridge/internal/handlers"
	"github.com/memohai/contactbridge/internal/logger"
	"github.com/memohai/contactbridge/internal/server"
	"github.com/memohai/contactbridge/internal/service"
	"github.com/memohai/contactbridge/internal/store/sqlite"
	"github.com/memohai/contactbridge/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("contactbridge %s\n", version.String())
		return
	}

	fx.New(
		fx.Provide(
			provideConfig(*configPath),
			boot.ProvideRuntimeConfig,
			provideLogger,

			provideStore,
			provideService,
			provideDispatcher,

			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewBridgeHandler),

			provideServer,
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideConfig(path string) func() (config.Config, error) {
	return func() (config.Config, error) {
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
}

func provideLogger(cfg config.Config) *slog.Logger {
	return logger.Init(cfg.Log.Level, cfg.Log.Format)
}

func provideStore(lc fx.Lifecycle, runtimeConfig *boot.RuntimeConfig, log *slog.Logger) (*sqlite.Store, error) {
	st, err := sqlite.Open(context.Background(), runtimeConfig.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.Migrate(log); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return st.Close()
		},
	})
	return st, nil
}

func provideService(st *sqlite.Store) *service.Service {
	// No native editor in a headless bridge; form and picker methods
	// report unsupported.
	return service.New(st, nil)
}

func provideDispatcher(lc fx.Lifecycle, runtimeConfig *boot.RuntimeConfig, svc *service.Service) *bridge.Dispatcher {
	d := bridge.New(bridge.Config{
		Workers:        runtimeConfig.BridgeWorkers,
		QueueSize:      runtimeConfig.BridgeQueue,
		RequestTimeout: runtimeConfig.RequestTimeout,
	})
	handlers.RegisterMethods(d, svc)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			d.Close()
			return nil
		},
	})
	return d
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	RuntimeConfig  *boot.RuntimeConfig
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.New(params.Logger, params.RuntimeConfig.ServerAddr,
		params.RuntimeConfig.JWTSecret, params.ServerHandlers...)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting contactbridge %s\n", version.String())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
					log.Error("server failed", slog.Any("error", err))
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
