package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/registration-bot/internal/config"
	"github.com/rickgao/registration-bot/internal/database"
	"github.com/rickgao/registration-bot/internal/dispatch"
	"github.com/rickgao/registration-bot/internal/gateway"
	"github.com/rickgao/registration-bot/internal/metrics"
	"github.com/rickgao/registration-bot/internal/notion"
	"github.com/rickgao/registration-bot/internal/registration"
	"github.com/rickgao/registration-bot/internal/version"
)

const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Register commands, connect to the gateway and handle registrations",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging, cfg.Debug, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting registration-bot",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
		"records_backend", cfg.Records.Backend,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	apiClient := newAPIClient(cfg, logger)

	// Commands must exist before users can invoke them.
	if err := registerCommands(ctx, apiClient, cfg); err != nil {
		logger.Error("failed to register commands", "error", err)
		return err
	}

	gatewayURL := cfg.Discord.GatewayURL
	if gatewayURL == "" {
		gatewayURL, err = apiClient.GetGatewayURL(ctx)
		if err != nil {
			logger.Error("failed to discover gateway url", "error", err)
			return err
		}
	}
	logger.Info("gateway url", "url", gatewayURL)

	store, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create record store", "error", err)
		return err
	}
	defer closeStore()

	dispatcher := dispatch.New(dispatch.Config{
		MaxConcurrent: int64(cfg.Dispatch.MaxConcurrent),
		MaxPending:    int64(cfg.Dispatch.MaxPending),
		TaskTimeout:   cfg.Dispatch.TaskTimeout,
	}, m, logger)
	dispatcher.Handle(registration.EventType, registration.NewHandler(registration.Config{}, store, apiClient, m, logger))

	supervisor := gateway.NewSupervisor(supervisorConfig(cfg, gatewayURL), dispatcher, m, logger)

	metricsServer := metrics.NewServer(metrics.ServerConfig{
		Host:           cfg.Metrics.Host,
		Port:           cfg.Metrics.Port,
		Path:           cfg.Metrics.Path,
		LivenessWindow: cfg.Metrics.LivenessWindow,
	}, m, logger.With("component", "metrics"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metricsServer.Run(gctx)
	})
	g.Go(func() error {
		if err := supervisor.Run(gctx); err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		return nil
	})

	runErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Warn("dispatcher did not drain", "error", err)
	}

	snap := m.Snapshot()
	logger.Info("registration-bot stopped",
		"users_created", snap.UsersCreated,
		"failed_db_updates", snap.FailedDBUpdates,
		"failed_interactions", snap.FailedInteractions,
		"reconnects", snap.Reconnects,
	)

	if runErr != nil {
		logger.Error("exiting with error", "error", runErr)
		return runErr
	}
	return nil
}

func supervisorConfig(cfg *config.BotConfig, gatewayURL string) gateway.SupervisorConfig {
	return gateway.SupervisorConfig{
		Connection: gateway.ConnectionConfig{
			Client: gateway.ClientConfig{
				URL:              gatewayURL,
				HandshakeTimeout: cfg.Gateway.HandshakeTimeout,
				WriteTimeout:     cfg.Gateway.WriteTimeout,
				BufferSize:       cfg.Gateway.BufferSize,
			},
			Identify: gateway.IdentifyData{
				Token:   cfg.Discord.Token,
				Intents: *cfg.Discord.Intents,
				Properties: gateway.IdentifyProperties{
					OS:      cfg.Discord.OS,
					Browser: cfg.Discord.Browser,
					Device:  cfg.Discord.Device,
				},
			},
			HelloTimeout: cfg.Gateway.HelloTimeout,
			Debug:        cfg.Debug,
		},
		ExitOnFatal:       cfg.Gateway.OnFatal == config.OnFatalExit,
		ReconnectBaseWait: cfg.Gateway.ReconnectBaseDelay,
		ReconnectMaxWait:  cfg.Gateway.ReconnectMaxDelay,
	}
}

// newStore builds the configured record store and a func releasing it.
func newStore(ctx context.Context, cfg *config.BotConfig, logger *slog.Logger) (registration.Store, func(), error) {
	switch cfg.Records.Backend {
	case config.BackendPostgres:
		pg := cfg.Records.Postgres
		logger.Info("connecting to database",
			"host", pg.Host,
			"port", pg.Port,
			"database", pg.Name,
		)
		pool, err := database.Connect(ctx, pg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := database.NewMemberStore(pool, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("database connected")
		return store, pool.Close, nil

	default:
		n := cfg.Records.Notion
		client := notion.NewClient(n.Token, n.DatabaseID,
			notion.WithBaseURL(n.APIURL),
			notion.WithVersion(n.Version),
			notion.WithTimeout(n.Timeout),
			notion.WithLogger(logger.With("component", "notion")),
		)
		return client, func() {}, nil
	}
}
