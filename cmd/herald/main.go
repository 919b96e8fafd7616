package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lysyi3m/herald/app/api"
	"github.com/lysyi3m/herald/app/cfg"
	"github.com/lysyi3m/herald/app/collect"
	"github.com/lysyi3m/herald/app/config"
	"github.com/lysyi3m/herald/app/database"
	"github.com/lysyi3m/herald/app/paths"
	"github.com/lysyi3m/herald/app/pipeline"
	"github.com/lysyi3m/herald/app/scheduler"
	"github.com/lysyi3m/herald/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if appCfg == nil {
		return
	}

	setupLogging(appCfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg); err != nil {
		slog.Error("Command failed", "command", appCfg.Command, "error", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(ctx context.Context, appCfg *cfg.Cfg) error {
	dirs, err := paths.Resolve(appCfg.ConfigDir, appCfg.DataDir)
	if err != nil {
		return err
	}

	switch appCfg.Command {
	case cfg.CommandRun:
		return runDaily(ctx, appCfg, dirs)
	case cfg.CommandDemo:
		return runDemo(ctx, appCfg, dirs)
	case cfg.CommandServe:
		return runServer(ctx, appCfg, dirs)
	case cfg.CommandScheduleInstall, cfg.CommandScheduleUninstall, cfg.CommandScheduleStatus:
		return runSchedule(ctx, appCfg, dirs)
	default:
		return fmt.Errorf("unknown command %q", appCfg.Command)
	}
}

func newCollector(appCfg *cfg.Cfg, timeout time.Duration, retries int) *tasks.Collector {
	fetcher := collect.NewFetcher(&http.Client{}, appCfg.UserAgent, timeout)
	return tasks.NewCollector(tasks.NewRunner(timeout), fetcher, collect.NewParser(), retries)
}

func openDatabase(dirs paths.Paths) (*database.DB, error) {
	if err := dirs.EnsureDataDirs(); err != nil {
		return nil, err
	}

	db, err := database.NewConnection(dirs.DatabaseFile())
	if err != nil {
		return nil, err
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("Database ready", "path", dirs.DatabaseFile(), "schema_version", version, "dirty", dirty)

	return db, nil
}

func runDaily(ctx context.Context, appCfg *cfg.Cfg, dirs paths.Paths) error {
	newsCfg, err := config.Resolve(appCfg.PresetsDir, appCfg.Preset, dirs.ConfigFile())
	if err != nil {
		return err
	}

	db, err := openDatabase(dirs)
	if err != nil {
		return err
	}
	defer db.Close()

	collector := newCollector(appCfg, appCfg.FetchTimeout, appCfg.FetchRetries)
	daily := pipeline.NewDaily(dirs, newsCfg, collector, database.NewRunRepository(db))

	result, err := daily.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("Daily digest complete",
		"collected", result.Stats.Collected,
		"filtered", result.Stats.Filtered,
		"kept", result.Stats.Kept)
	return nil
}

func runDemo(ctx context.Context, appCfg *cfg.Cfg, dirs paths.Paths) error {
	newsCfg, err := config.Resolve(appCfg.PresetsDir, appCfg.Preset, dirs.ConfigFile())
	if err != nil {
		slog.Warn("Failed to load configuration, using fallback feeds", "error", err)
		newsCfg = nil
	}

	collector := newCollector(appCfg, pipeline.DemoFetchTimeout, pipeline.DemoFetchRetries)

	digest, err := pipeline.NewDemo(newsCfg, collector).Run(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(os.Stdout, digest)
	return err
}

func runServer(ctx context.Context, appCfg *cfg.Cfg, dirs paths.Paths) error {
	db, err := openDatabase(dirs)
	if err != nil {
		return err
	}
	defer db.Close()

	handler := api.NewHandler(database.NewRunRepository(db), appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "version", appCfg.Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down HTTP server")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}

func runSchedule(ctx context.Context, appCfg *cfg.Cfg, dirs paths.Paths) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}

	env := map[string]string{
		"HERALD_CONFIG_DIR": dirs.ConfigDir,
		"HERALD_DATA_DIR":   dirs.DataDir,
	}
	installer := scheduler.NewInstaller(runtime.GOOS, home, env, scheduler.NewExecRunner())

	switch appCfg.Command {
	case cfg.CommandScheduleInstall:
		runCommand := appCfg.RunScript
		if runCommand == "" {
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to resolve executable: %w", err)
			}
			runCommand = exe + " run"
		}
		return installer.Install(ctx, runCommand, appCfg.ScheduleTime)
	case cfg.CommandScheduleUninstall:
		return installer.Uninstall(ctx)
	default:
		status := installer.Status(ctx)
		fmt.Fprintf(os.Stdout, "platform: %s\ninstalled: %t\n", status.Platform, status.Installed)
		if status.Backend != "" {
			fmt.Fprintf(os.Stdout, "backend: %s\n", status.Backend)
		}
		return nil
	}
}
