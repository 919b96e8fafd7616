package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	PlatformMacOS       = "macos"
	PlatformLinux       = "linux"
	PlatformUnsupported = "unsupported"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrInvalidTime         = errors.New("invalid time")
)

// DetectPlatform maps a GOOS value to the scheduler backend family.
func DetectPlatform(goos string) string {
	switch goos {
	case "darwin":
		return PlatformMacOS
	case "linux":
		return PlatformLinux
	default:
		return PlatformUnsupported
	}
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTime parses "HH:MM" with hour 0-23 and minute 0-59.
func ParseTime(value string) (ClockTime, error) {
	hourStr, minuteStr, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || strings.Contains(minuteStr, ":") {
		return ClockTime{}, fmt.Errorf("%w %q: expected HH:MM", ErrInvalidTime, value)
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w %q: bad hour", ErrInvalidTime, value)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w %q: bad minute", ErrInvalidTime, value)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w %q: hour must be 0-23, minute 0-59", ErrInvalidTime, value)
	}

	return ClockTime{Hour: hour, Minute: minute}, nil
}
