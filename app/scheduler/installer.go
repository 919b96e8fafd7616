package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner executes an external command with optional stdin.
type CommandRunner interface {
	Run(ctx context.Context, stdin string, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func NewExecRunner() CommandRunner {
	return execRunner{}
}

type Status struct {
	Installed bool   `json:"installed"`
	Platform  string `json:"platform"`
	Backend   string `json:"backend,omitempty"`
}

type Installer struct {
	platform string
	home     string
	env      map[string]string
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// NewInstaller builds an installer for goos. env is forwarded to the
// scheduled job, typically the resolved XDG directories.
func NewInstaller(goos, home string, env map[string]string, runner CommandRunner) *Installer {
	return &Installer{
		platform: DetectPlatform(goos),
		home:     home,
		env:      env,
		runner:   runner,
		lookPath: exec.LookPath,
	}
}

func (i *Installer) Platform() string {
	return i.platform
}

func (i *Installer) plistPath() string {
	return filepath.Join(i.home, "Library", "LaunchAgents", LaunchdLabel+".plist")
}

func (i *Installer) systemdDir() string {
	return filepath.Join(i.home, ".config", "systemd", "user")
}

func (i *Installer) hasSystemd() bool {
	_, err := i.lookPath("systemctl")
	return err == nil
}

func (i *Installer) Install(ctx context.Context, runCommand, at string) error {
	clock, err := ParseTime(at)
	if err != nil {
		return err
	}
	if strings.TrimSpace(runCommand) == "" {
		return errors.New("failed to install schedule: empty run command")
	}

	switch i.platform {
	case PlatformMacOS:
		return i.installLaunchd(ctx, runCommand, clock)
	case PlatformLinux:
		if i.hasSystemd() {
			return i.installSystemd(ctx, runCommand, clock)
		}
		return i.installCron(ctx, runCommand, clock)
	default:
		return ErrUnsupportedPlatform
	}
}

func (i *Installer) Uninstall(ctx context.Context) error {
	switch i.platform {
	case PlatformMacOS:
		return i.uninstallLaunchd(ctx)
	case PlatformLinux:
		var errs []error
		if i.hasSystemd() {
			errs = append(errs, i.uninstallSystemd(ctx))
		}
		errs = append(errs, i.uninstallCron(ctx))
		return errors.Join(errs...)
	default:
		return ErrUnsupportedPlatform
	}
}

func (i *Installer) Status(ctx context.Context) Status {
	status := Status{Platform: i.platform}

	switch i.platform {
	case PlatformMacOS:
		if fileExists(i.plistPath()) {
			status.Installed = true
			status.Backend = "launchd"
		}
	case PlatformLinux:
		if fileExists(filepath.Join(i.systemdDir(), SystemdTimer)) {
			status.Installed = true
			status.Backend = "systemd"
			return status
		}
		crontab, err := i.runner.Run(ctx, "", "crontab", "-l")
		if err == nil && strings.Contains(crontab, CronMarker) {
			status.Installed = true
			status.Backend = "cron"
		}
	}

	return status
}

func (i *Installer) installLaunchd(ctx context.Context, runCommand string, at ClockTime) error {
	path := i.plistPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create launch agents directory: %w", err)
	}

	if fileExists(path) {
		// Reload picks up a changed plist.
		_, _ = i.runner.Run(ctx, "", "launchctl", "unload", path)
	}

	if err := os.WriteFile(path, []byte(LaunchdPlist(runCommand, at, i.env)), 0o644); err != nil {
		return fmt.Errorf("failed to write launchd plist: %w", err)
	}

	if _, err := i.runner.Run(ctx, "", "launchctl", "load", path); err != nil {
		return fmt.Errorf("failed to load launchd agent: %w", err)
	}

	slog.Info("Installed launchd agent", "path", path, "time", at.String())
	return nil
}

func (i *Installer) uninstallLaunchd(ctx context.Context) error {
	path := i.plistPath()
	if !fileExists(path) {
		return nil
	}

	_, _ = i.runner.Run(ctx, "", "launchctl", "unload", path)

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove launchd plist: %w", err)
	}

	slog.Info("Removed launchd agent", "path", path)
	return nil
}

func (i *Installer) installSystemd(ctx context.Context, runCommand string, at ClockTime) error {
	dir := i.systemdDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create systemd user directory: %w", err)
	}

	units := map[string]string{
		SystemdService: SystemdServiceUnit(runCommand, i.env),
		SystemdTimer:   SystemdTimerUnit(at),
	}
	for name, content := range units {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if _, err := i.runner.Run(ctx, "", "systemctl", "--user", "daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload systemd: %w", err)
	}
	if _, err := i.runner.Run(ctx, "", "systemctl", "--user", "enable", "--now", SystemdTimer); err != nil {
		return fmt.Errorf("failed to enable systemd timer: %w", err)
	}

	slog.Info("Installed systemd timer", "dir", dir, "time", at.String())
	return nil
}

func (i *Installer) uninstallSystemd(ctx context.Context) error {
	dir := i.systemdDir()
	timerPath := filepath.Join(dir, SystemdTimer)
	if !fileExists(timerPath) {
		return nil
	}

	_, _ = i.runner.Run(ctx, "", "systemctl", "--user", "disable", "--now", SystemdTimer)

	for _, name := range []string{SystemdTimer, SystemdService} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	if _, err := i.runner.Run(ctx, "", "systemctl", "--user", "daemon-reload"); err != nil {
		return fmt.Errorf("failed to reload systemd: %w", err)
	}

	slog.Info("Removed systemd timer", "dir", dir)
	return nil
}

func (i *Installer) installCron(ctx context.Context, runCommand string, at ClockTime) error {
	// An empty crontab makes "crontab -l" exit non-zero.
	current, _ := i.runner.Run(ctx, "", "crontab", "-l")

	updated := ReplaceCronEntry(current, CrontabEntry(runCommand, at))
	if _, err := i.runner.Run(ctx, updated, "crontab", "-"); err != nil {
		return fmt.Errorf("failed to write crontab: %w", err)
	}

	slog.Info("Installed cron entry", "time", at.String())
	return nil
}

func (i *Installer) uninstallCron(ctx context.Context) error {
	current, err := i.runner.Run(ctx, "", "crontab", "-l")
	if err != nil || !strings.Contains(current, CronMarker) {
		return nil
	}

	updated := ReplaceCronEntry(current, "")
	if updated == "" {
		if _, err := i.runner.Run(ctx, "", "crontab", "-r"); err != nil {
			return fmt.Errorf("failed to remove crontab: %w", err)
		}
	} else if _, err := i.runner.Run(ctx, updated, "crontab", "-"); err != nil {
		return fmt.Errorf("failed to write crontab: %w", err)
	}

	slog.Info("Removed cron entry")
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
