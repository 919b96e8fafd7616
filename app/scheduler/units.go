package scheduler

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

const (
	LaunchdLabel   = "com.herald"
	SystemdService = "herald.service"
	SystemdTimer   = "herald.timer"
	CronMarker     = "# herald"
)

// LaunchdPlist renders the per-user launch agent. The run command is split
// on whitespace into ProgramArguments.
func LaunchdPlist(runCommand string, at ClockTime, env map[string]string) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	buf.WriteString(`<plist version="1.0">` + "\n<dict>\n")

	writeKeyString(&buf, "Label", LaunchdLabel, 4)

	buf.WriteString("    <key>ProgramArguments</key>\n    <array>\n")
	for _, arg := range strings.Fields(runCommand) {
		writeString(&buf, arg, 8)
	}
	buf.WriteString("    </array>\n")

	buf.WriteString("    <key>StartCalendarInterval</key>\n    <dict>\n")
	fmt.Fprintf(&buf, "        <key>Hour</key>\n        <integer>%d</integer>\n", at.Hour)
	fmt.Fprintf(&buf, "        <key>Minute</key>\n        <integer>%d</integer>\n", at.Minute)
	buf.WriteString("    </dict>\n")

	writeKeyString(&buf, "StandardOutPath", "/tmp/herald-stdout.log", 4)
	writeKeyString(&buf, "StandardErrorPath", "/tmp/herald-stderr.log", 4)
	buf.WriteString("    <key>RunAtLoad</key>\n    <false/>\n")

	if len(env) > 0 {
		buf.WriteString("    <key>EnvironmentVariables</key>\n    <dict>\n")
		for _, k := range sortedKeys(env) {
			writeKeyString(&buf, k, env[k], 8)
		}
		buf.WriteString("    </dict>\n")
	}

	buf.WriteString("</dict>\n</plist>\n")

	return buf.String()
}

func SystemdServiceUnit(runCommand string, env map[string]string) string {
	var b strings.Builder

	b.WriteString("[Unit]\nDescription=herald daily pipeline\n\n")
	b.WriteString("[Service]\nType=oneshot\n")
	fmt.Fprintf(&b, "ExecStart=%s\n", runCommand)
	for _, k := range sortedKeys(env) {
		fmt.Fprintf(&b, "Environment=%s=%s\n", k, env[k])
	}

	return b.String()
}

func SystemdTimerUnit(at ClockTime) string {
	return fmt.Sprintf(`[Unit]
Description=herald daily timer

[Timer]
OnCalendar=*-*-* %s:00
Persistent=true

[Install]
WantedBy=timers.target
`, at)
}

func CrontabEntry(runCommand string, at ClockTime) string {
	return fmt.Sprintf("%d %d * * * %s  %s", at.Minute, at.Hour, runCommand, CronMarker)
}

// ReplaceCronEntry drops existing herald lines from crontab and, when entry
// is non-empty, appends it.
func ReplaceCronEntry(crontab, entry string) string {
	var lines []string
	for _, line := range strings.Split(crontab, "\n") {
		if line == "" || strings.Contains(line, CronMarker) {
			continue
		}
		lines = append(lines, line)
	}
	if entry != "" {
		lines = append(lines, entry)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func writeKeyString(buf *bytes.Buffer, key, value string, indent int) {
	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<key>")
	xml.EscapeText(buf, []byte(key))
	buf.WriteString("</key>\n")
	writeString(buf, value, indent)
}

func writeString(buf *bytes.Buffer, value string, indent int) {
	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<string>")
	xml.EscapeText(buf, []byte(value))
	buf.WriteString("</string>\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
