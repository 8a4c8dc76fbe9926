package cmd

import (
	"log/slog"
	"testing"
)

func TestConfigConstants(t *testing.T) {
	if configBaseName != "callmap" {
		t.Errorf("configBaseName = %q", configBaseName)
	}
	if envPrefix != "CALLMAP" {
		t.Errorf("envPrefix = %q", envPrefix)
	}
	if ignoreDirsConfigKey != "scan.ignore_dirs" {
		t.Errorf("ignoreDirsConfigKey = %q", ignoreDirsConfigKey)
	}
	if workersConfigKey != "scan.workers" {
		t.Errorf("workersConfigKey = %q", workersConfigKey)
	}
	if maxFileSizeConfigKey != "scan.max_file_size" {
		t.Errorf("maxFileSizeConfigKey = %q", maxFileSizeConfigKey)
	}
	if gitignoreConfigKey != "scan.gitignore" {
		t.Errorf("gitignoreConfigKey = %q", gitignoreConfigKey)
	}
	if defaultLogFilename != ".callmap.log" {
		t.Errorf("defaultLogFilename = %q", defaultLogFilename)
	}
}

func TestParseSlogLevel(t *testing.T) {
	cases := []struct {
		value string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" INFO ", slog.LevelInfo},
		{"-4", slog.LevelDebug},
		{"8", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseSlogLevel(tc.value, slog.LevelInfo); got != tc.want {
			t.Errorf("parseSlogLevel(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
