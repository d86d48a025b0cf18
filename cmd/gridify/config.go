package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bi0dread/gridify"
)

// options holds the settings of the command
type options struct {
	Filter    string   `mapstructure:"filter"`
	SortBy    string   `mapstructure:"sort_by"`
	Ascending bool     `mapstructure:"asc"`
	Page      int      `mapstructure:"page"`
	PageSize  int      `mapstructure:"page_size"`
	Fields    []string `mapstructure:"fields"`
	Data      string   `mapstructure:"data"`
	Table     string   `mapstructure:"table"`
	Dialect   string   `mapstructure:"dialect"`
	DSN       string   `mapstructure:"dsn"`
	Output    string   `mapstructure:"output"`
	LogFormat string   `mapstructure:"log_format"`
	LogLevel  string   `mapstructure:"log_level"`

	CaseSensitive bool `mapstructure:"case_sensitive"`

	gridify.Config `mapstructure:",squash"`
}

func init() {
	pflag.String("filter", "", "Filter expression, e.g. name=*jo,age>>30")
	pflag.String("sort-by", "", "Field to order by")
	pflag.Bool("asc", true, "Sort ascending")
	pflag.Int("page", 1, "One-based page number")
	pflag.Int("page-size", 0, "Page size (0 uses the default page size)")
	pflag.StringSlice("fields", nil, "Field declarations as name:type (string, int, uint, float, bool, time, duration, uuid, decimal)")
	pflag.String("data", "", "JSON file with an array of records to run the query against")
	pflag.String("table", "records", "Table or collection name used when rendering queries")
	pflag.String("dialect", "sqlite", "SQL dialect for the gorm rendering (sqlite or postgres)")
	pflag.String("dsn", "", "Postgres DSN used by the postgres dialect; no connection is made")
	pflag.String("output", "json", "Result format for --data (json or yaml)")
	pflag.String("log-format", "text", "Log format (text or json)")
	pflag.String("log-level", "info", "Log level (debug, info, warn, error)")
	pflag.Int("default-page-size", 10, "Page size used when none is requested")
	pflag.Bool("case-sensitive", false, "Match field names case sensitively")
	pflag.Bool("ignore-not-mapped-fields", true, "Ignore comparisons on unknown fields instead of failing")
	pflag.Bool("allow-escapes", true, `Allow \( \) \, \| and \\ escapes in values`)
	pflag.String("config", "", "Path to the configuration file")
}

// loadOptions merges defaults, flags, GRIDIFY_* environment variables and
// an optional configuration file.
func loadOptions() (options, error) {
	defaults := gridify.DefaultConfig()
	viper.SetDefault("default_page_size", defaults.DefaultPageSize)
	viper.SetDefault("ignore_not_mapped_fields", defaults.IgnoreNotMappedFields)
	viper.SetDefault("allow_escapes", defaults.AllowEscapes)

	pflag.Parse()
	pflag.CommandLine.VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})

	viper.SetEnvPrefix("GRIDIFY")
	viper.AutomaticEnv()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("gridify")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/gridify/")
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return options{}, fmt.Errorf("unable to read config: %w", err)
		}
	}

	var cfg options
	if err := viper.Unmarshal(&cfg); err != nil {
		return options{}, fmt.Errorf("unable to decode into struct, %w", err)
	}
	cfg.Logger = newLogger(cfg.LogFormat, cfg.LogLevel)
	return cfg, nil
}

func newLogger(format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
