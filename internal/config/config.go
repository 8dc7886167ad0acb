// Package config loads dayslice settings from a YAML file, the environment
// and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sadopc/dayslice/internal/report"
)

const envPrefix = "DAYSLICE"

type Config struct {
	Database Database `mapstructure:"database"`
	Logging  Logging  `mapstructure:"logging"`
	Report   Report   `mapstructure:"report"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type Database struct {
	Path string `mapstructure:"path"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type Report struct {
	DefaultPeriod   string `mapstructure:"default_period"`
	ShowUnrecorded  bool   `mapstructure:"show_unrecorded"`
	UnrecordedLabel string `mapstructure:"unrecorded_label"`
	WeekEnd         string `mapstructure:"week_end"`
}

// Dir returns ~/.config/dayslice.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "dayslice"), nil
}

// Loader wraps a private viper instance so flags can be bound before Load.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetDefault("database.path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("report.default_period", "day")
	v.SetDefault("report.show_unrecorded", true)
	v.SetDefault("report.unrecorded_label", report.DefaultUnrecordedLabel)
	v.SetDefault("report.week_end", "today")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlag makes flag override key when it is set on the command line.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: no such flag", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads path, or searches ~/.config/dayslice and the working directory
// for config.yaml when path is empty. A missing config file is not an error.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(ExpandPath(path))
	} else {
		if dir, err := Dir(); err == nil {
			l.v.AddConfigPath(dir)
		}
		l.v.AddConfigPath(".")
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = l.v.ConfigFileUsed()
	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := report.ParseGranularity(c.Report.DefaultPeriod); err != nil {
		return fmt.Errorf("report.default_period: %w", err)
	}
	switch strings.ToLower(c.Report.WeekEnd) {
	case "today", "sunday", "saturday":
	default:
		return fmt.Errorf("report.week_end: unknown value %q (want today, sunday or saturday)", c.Report.WeekEnd)
	}
	return nil
}

// Unrecorded is the label passed to the report engine: empty when the
// unrecorded bucket is turned off.
func (r Report) Unrecorded() string {
	if !r.ShowUnrecorded {
		return ""
	}
	if r.UnrecordedLabel == "" {
		return report.DefaultUnrecordedLabel
	}
	return r.UnrecordedLabel
}

// WeekAnchor returns the last day of the week containing today. With
// week_end "today" weeks are the seven days ending today.
func (r Report) WeekAnchor(today time.Time) time.Time {
	var end time.Weekday
	switch strings.ToLower(r.WeekEnd) {
	case "sunday":
		end = time.Sunday
	case "saturday":
		end = time.Saturday
	default:
		return today
	}
	ahead := (int(end) - int(today.Weekday()) + 7) % 7
	return today.AddDate(0, 0, ahead)
}
