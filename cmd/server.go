package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talento/internal/api"
	"talento/internal/auth"
	"talento/internal/hr"
	"talento/internal/matcher"
	"talento/internal/notifier"
	"talento/internal/questionnaire"
	"talento/internal/scheduler"
	"talento/internal/storage"
	"talento/internal/upload"
	"talento/internal/workflow"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maintainer 调度器接口，便于测试替换。
type maintainer interface {
	Start(ctx context.Context) error
	RunOnce(ctx context.Context) (scheduler.Report, error)
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// appDeps 组装完成的运行时依赖。
type appDeps struct {
	store    *storage.Store
	accounts *auth.Accounts
	sched    maintainer
	handler  http.Handler
	logger   zerolog.Logger
}

type appBuilder func(AppConfig) (appDeps, func(), error)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:          "talento",
		Short:        "Talento job board and HR service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_FILE or config.yaml)")

	load := func() (AppConfig, error) { return loadConfig(configPath) }
	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newCreateAdminCmd(load),
		newMaintenanceCmd(load),
	)
	return root
}

func newServeCmd(load func() (AppConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the maintenance scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			deps, cleanup, err := buildApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           deps.handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			deps.logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")
			return runServer(ctx, srv, deps.sched, durationOr(cfg.Server.ShutdownTimeout, 5*time.Second))
		},
	}
}

func newMigrateCmd(load func() (AppConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			// Open 内部完成自动迁移。
			store, err := storage.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "database schema is up to date")
			return nil
		},
	}
}

// buildApp 打开数据库并组装全部服务。
func buildApp(cfg AppConfig) (appDeps, func(), error) {
	logger := newLogger(cfg.Log, os.Stderr)

	store, err := storage.Open(cfg.Database)
	if err != nil {
		return appDeps{}, func() {}, fmt.Errorf("init store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}

	authSvc, err := auth.New(cfg.Auth)
	if err != nil {
		cleanup()
		return appDeps{}, func() {}, fmt.Errorf("init auth: %w", err)
	}

	dedup := notifier.NewDedup(cfg.Dedup)
	notify := notifier.NewDispatcher(logger, dedup, buildChannels(cfg.Email, logger)...)
	sched := scheduler.NewScheduler(store, dedup, logger.With().Str("component", "scheduler").Logger(), cfg.Scheduler)
	accounts := auth.NewAccounts(store, authSvc)

	handler := api.NewHandler(api.Deps{
		Store:          store,
		Auth:           authSvc,
		Accounts:       accounts,
		Workflow:       workflow.New(store, notify, cfg.Workflow, logger.With().Str("component", "workflow").Logger()),
		HR:             hr.New(store, logger.With().Str("component", "hr").Logger()),
		Questionnaires: questionnaire.New(store, notify, logger.With().Str("component", "questionnaire").Logger()),
		Matcher:        matcher.New(store, cfg.Matcher, logger.With().Str("component", "matcher").Logger()),
		Uploads:        upload.New(cfg.Uploads),
		Notify:         notify,
		Scheduler:      sched,
		StreamDedup:    notifier.NewDedup(cfg.Dedup),
		StreamInterval: durationOr(cfg.Server.StreamInterval, 5*time.Second),
		Logger:         logger.With().Str("component", "api").Logger(),
	})

	return appDeps{store: store, accounts: accounts, sched: sched, handler: handler, logger: logger}, cleanup, nil
}

// buildChannels 日志渠道始终启用，邮件在配置完整时启用。
func buildChannels(cfg notifier.EmailConfig, logger zerolog.Logger) []notifier.Channel {
	chLogger := logger.With().Str("component", "notifier").Logger()
	channels := []notifier.Channel{notifier.NewLogChannel(&chLogger)}
	if cfg.Enabled() {
		channels = append(channels, notifier.NewEmailChannel(cfg, nil))
	} else {
		logger.Info().Msg("email notifier disabled: missing host/port/from")
	}
	return channels
}

// runServer 并行运行 HTTP 服务与调度器，ctx 取消后优雅关闭。
func runServer(ctx context.Context, srv httpServer, sched maintainer, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sched.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scheduler: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func durationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
