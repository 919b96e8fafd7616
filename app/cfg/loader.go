package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const (
	CommandRun               = "run"
	CommandDemo              = "demo"
	CommandServe             = "serve"
	CommandScheduleInstall   = "schedule-install"
	CommandScheduleUninstall = "schedule-uninstall"
	CommandScheduleStatus    = "schedule-status"
)

var commands = []string{
	CommandRun,
	CommandDemo,
	CommandServe,
	CommandScheduleInstall,
	CommandScheduleUninstall,
	CommandScheduleStatus,
}

type rawCfg struct {
	// Locations
	ConfigDir  string `long:"config-dir" env:"HERALD_CONFIG_DIR" description:"Configuration directory (default: $XDG_CONFIG_HOME/herald)"`
	DataDir    string `long:"data-dir" env:"HERALD_DATA_DIR" description:"Data directory (default: $XDG_DATA_HOME/herald)"`
	PresetsDir string `long:"presets-dir" env:"HERALD_PRESETS_DIR" default:"./presets" description:"Directory containing preset files"`
	Preset     string `long:"preset" env:"HERALD_PRESET" description:"Preset name, overrides the one in config.yaml"`

	// HTTP API
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port for the digest API"`

	// Collection
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"Herald/1.0" description:"User agent string for HTTP requests"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Per-request fetch timeout in seconds"`
	FetchRetries int    `long:"fetch-retries" env:"FETCH_RETRIES" default:"2" description:"Retries per feed after a failed fetch"`

	// Scheduling
	ScheduleTime string `long:"schedule-time" env:"HERALD_SCHEDULE_TIME" default:"06:00" description:"Daily run time (HH:MM) for schedule-install"`
	RunScript    string `long:"run-script" env:"HERALD_RUN_SCRIPT" description:"Command the scheduler executes (default: this binary with 'run')"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for digest dates (e.g., UTC, Europe/Berlin)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Command string `positional-arg-name:"command" description:"run, demo, serve, schedule-install, schedule-uninstall or schedule-status"`
	} `positional-args:"yes"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil, nil when help
// was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	command := cmp.Or(raw.Args.Command, CommandRun)
	if !isCommand(command) {
		return nil, fmt.Errorf("failed to parse configuration: unknown command %q", command)
	}

	cfg := &Cfg{
		ConfigDir:    raw.ConfigDir,
		DataDir:      raw.DataDir,
		PresetsDir:   raw.PresetsDir,
		Preset:       raw.Preset,
		Port:         raw.Port,
		UserAgent:    raw.UserAgent,
		FetchTimeout: time.Duration(max(1, raw.FetchTimeout)) * time.Second,
		FetchRetries: max(0, raw.FetchRetries),
		ScheduleTime: raw.ScheduleTime,
		RunScript:    raw.RunScript,
		Command:      command,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func isCommand(name string) bool {
	for _, c := range commands {
		if c == name {
			return true
		}
	}
	return false
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
