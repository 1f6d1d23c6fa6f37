package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecore/internal/api"
	"github.com/terraincognita07/cyclecore/internal/config"
	"github.com/terraincognita07/cyclecore/internal/db"
	"github.com/terraincognita07/cyclecore/internal/knowledge"
	"github.com/terraincognita07/cyclecore/internal/logger"
	"github.com/terraincognita07/cyclecore/internal/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := options.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return RunServeCommand(ctx, cfg)
		},
	}
}

// RunServeCommand blocks until ctx is cancelled or the listener fails.
func RunServeCommand(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	location, ok := cfg.Location()
	if !ok {
		log.Warn("invalid timezone, falling back to UTC", "tz", cfg.Server.Timezone)
	}
	time.Local = location

	signingKey, err := cfg.SigningKey()
	if err != nil {
		return fmt.Errorf("auth init failed: %w", err)
	}

	database, err := db.OpenSQLite(cfg.Database.Path, log)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer sqlDB.Close()

	knowledgeManager, err := knowledge.NewManager(cfg.Knowledge.DefaultLanguage, cfg.Knowledge.Dir)
	if err != nil {
		return fmt.Errorf("knowledge init failed: %w", err)
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(ctx)
	defer cancelLifecycle()

	generator := services.NewGenerator(cfg.Learning.Seed, services.DateAtLocation(time.Now(), location).AddDate(-1, 0, 0))
	var lifecycle *services.LifecycleManager
	if cfg.Learning.Enabled {
		lifecycle = services.NewLifecycleManager(
			db.NewLearningStateRepository(database),
			services.NewSimulatedTrainer(cfg.Learning.Seed),
			generator,
			services.LifecycleOptions{
				MinUserLogs:     cfg.Learning.MinUserLogs,
				RetrainInterval: cfg.RetrainInterval(),
				SyntheticUsers:  cfg.Learning.SyntheticUsers,
				SyntheticCycles: cfg.Learning.SyntheticCycles,
			},
		)
		services.NewLifecycleScheduler(lifecycle, cfg.SchedulerInterval(), log).Start(lifecycleCtx)
	}

	handler, err := api.NewHandler(database, api.HandlerOptions{
		SigningKey:    signingKey,
		Location:      location,
		Knowledge:     knowledgeManager,
		Lifecycle:     lifecycle,
		Generator:     generator,
		ScorerTimeout: cfg.ScorerTimeout(),
		RankLimit:     cfg.Ranker.DefaultLimit,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newApp(handler)

	go func() {
		<-ctx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "err", err)
		}
	}()

	log.Info("cyclecore listening",
		"port", cfg.Server.Port,
		"db", cfg.Database.Path,
		"tz", location.String(),
		"languages", knowledgeManager.SupportedLanguages(),
		"learning", cfg.Learning.Enabled,
	)
	if err := app.Listen(":" + cfg.Server.Port); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "cyclecore",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}
