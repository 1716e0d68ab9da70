package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/oxplot/go-typec-phy/tcpcdriver/fusb302"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fusb302ctl.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestResolveConfig(t *testing.T) {
	file := writeConfig(t, `
bus: "0"
part: fusb302b10mpx
speed_hz: 400000
auto_retry: false
log_level: debug
`)

	tests := []struct {
		name string
		path string
		args []string
		want config
	}{
		{
			name: "defaults",
			want: defaultConfig(),
		},
		{
			name: "file",
			path: file,
			want: config{Bus: "0", Part: "fusb302b10mpx", SpeedHz: 400000, AutoRetry: false, LogLevel: "debug"},
		},
		{
			name: "flags override file",
			path: file,
			args: []string{"--bus", "/dev/i2c-3", "--auto-retry", "--log-level=warn"},
			want: config{Bus: "/dev/i2c-3", Part: "fusb302b10mpx", SpeedHz: 400000, AutoRetry: true, LogLevel: "warn"},
		},
		{
			name: "flags without file",
			args: []string{"-p", "FUSB302B01MPX", "--speed", "100000"},
			want: config{Bus: "1", Part: "FUSB302B01MPX", SpeedHz: 100000, AutoRetry: true, LogLevel: "info"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flagged := defaultConfig()
			bindFlags(fs, &flagged)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			got, err := resolveConfig(tt.path, fs, flagged)
			if err != nil {
				t.Fatalf("resolveConfig() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "buss: 1\n", "buss"},
		{"unknown part", "part: FUSB303\n", "unknown part"},
		{"too fast", "speed_hz: 3400000\n", "out of range"},
		{"zero speed", "speed_hz: 0\n", "out of range"},
		{"bad level", "log_level: loud\n", "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flagged := defaultConfig()
			bindFlags(fs, &flagged)
			_, err := resolveConfig(writeConfig(t, tt.content), fs, flagged)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("resolveConfig() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if _, err := resolveConfig(filepath.Join(t.TempDir(), "missing.yaml"), fs, defaultConfig()); !os.IsNotExist(err) {
		t.Errorf("resolveConfig() error = %v, want not exist", err)
	}
}

func TestEmptyConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	got, err := resolveConfig(writeConfig(t, ""), fs, defaultConfig())
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	if got != defaultConfig() {
		t.Errorf("resolveConfig() = %+v, want defaults", got)
	}
}

func TestConfigConversions(t *testing.T) {
	c := defaultConfig()
	c.Part = "fusb302b11mpx"
	c.LogLevel = "WARN"
	if m, err := c.mpn(); err != nil || m != fusb302.FUSB302B11MPX {
		t.Errorf("mpn() = %v, %v, want FUSB302B11MPX", m, err)
	}
	if l, err := c.level(); err != nil || l != slog.LevelWarn {
		t.Errorf("level() = %v, %v, want WARN", l, err)
	}
}
