package cfg

import "time"

type Cfg struct {
	// Locations
	ConfigDir  string
	DataDir    string
	PresetsDir string
	Preset     string

	// HTTP API
	Port string

	// Collection
	UserAgent    string
	FetchTimeout time.Duration
	FetchRetries int

	// Scheduling
	ScheduleTime string
	RunScript    string

	// Application metadata
	Command  string
	Timezone string
	Debug    bool
	Version  string
}
