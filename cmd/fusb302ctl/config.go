package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/oxplot/go-typec-phy/tcpcdriver/fusb302"
)

// maxSpeedHz is the fastest I2C clock the FUSB302 supports.
const maxSpeedHz = 1_000_000

type config struct {
	Bus       string `yaml:"bus"`
	Part      string `yaml:"part"`
	SpeedHz   int64  `yaml:"speed_hz"`
	AutoRetry bool   `yaml:"auto_retry"`
	LogLevel  string `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		Bus:       "1",
		Part:      "FUSB302BMPX",
		SpeedHz:   maxSpeedHz,
		AutoRetry: true,
		LogLevel:  "info",
	}
}

var parts = map[string]fusb302.MPN{
	"FUSB302BUCX":   fusb302.FUSB302BUCX,
	"FUSB302BMPX":   fusb302.FUSB302BMPX,
	"FUSB302VMPX":   fusb302.FUSB302VMPX,
	"FUSB302B01MPX": fusb302.FUSB302B01MPX,
	"FUSB302B10MPX": fusb302.FUSB302B10MPX,
	"FUSB302B11MPX": fusb302.FUSB302B11MPX,
}

func partNames() string {
	names := make([]string, 0, len(parts))
	for n := range parts {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// bindFlags registers the flags overriding the configuration file, with c
// holding their defaults.
func bindFlags(fs *pflag.FlagSet, c *config) {
	fs.StringVarP(&c.Bus, "bus", "b", c.Bus, "I2C bus name or number")
	fs.StringVarP(&c.Part, "part", "p", c.Part, "part number, one of "+partNames())
	fs.Int64Var(&c.SpeedHz, "speed", c.SpeedHz, "I2C clock in Hz")
	fs.BoolVar(&c.AutoRetry, "auto-retry", c.AutoRetry, "let the chip retry transmissions without GoodCRC")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
}

// resolveConfig returns the defaults overlaid with the YAML file at path, if
// any, and then with the flags of fs set on the command line. flagged holds
// the values bound to fs.
func resolveConfig(path string, fs *pflag.FlagSet, flagged config) (config, error) {
	c := defaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return c, err
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return c, fmt.Errorf("%s: %w", path, err)
		}
	}

	if fs.Changed("bus") {
		c.Bus = flagged.Bus
	}
	if fs.Changed("part") {
		c.Part = flagged.Part
	}
	if fs.Changed("speed") {
		c.SpeedHz = flagged.SpeedHz
	}
	if fs.Changed("auto-retry") {
		c.AutoRetry = flagged.AutoRetry
	}
	if fs.Changed("log-level") {
		c.LogLevel = flagged.LogLevel
	}
	return c, c.validate()
}

func (c config) validate() error {
	if _, err := c.mpn(); err != nil {
		return err
	}
	if _, err := c.level(); err != nil {
		return err
	}
	if c.SpeedHz <= 0 || c.SpeedHz > maxSpeedHz {
		return fmt.Errorf("speed %dHz out of range, must be 1 to %d", c.SpeedHz, maxSpeedHz)
	}
	return nil
}

func (c config) mpn() (fusb302.MPN, error) {
	m, ok := parts[strings.ToUpper(c.Part)]
	if !ok {
		return 0, fmt.Errorf("unknown part %q, must be one of %s", c.Part, partNames())
	}
	return m, nil
}

func (c config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}
