package gridify

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const defaultPageSize = 10

// Config holds the settings shared by filtering, ordering and paging.
type Config struct {
	// DefaultPageSize replaces non-positive page sizes
	DefaultPageSize int `mapstructure:"default_page_size"`
	// IgnoreNotMappedFields turns comparisons on unknown fields into no-ops
	// instead of errors.
	IgnoreNotMappedFields bool `mapstructure:"ignore_not_mapped_fields"`
	// AllowEscapes enables backslash escaping of ( ) , | in values
	AllowEscapes bool `mapstructure:"allow_escapes"`

	Logger *slog.Logger `mapstructure:"-"`
	// TracerProvider receives a span per Find call. Nil disables tracing.
	TracerProvider trace.TracerProvider `mapstructure:"-"`
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		DefaultPageSize:       defaultPageSize,
		IgnoreNotMappedFields: true,
		AllowEscapes:          true,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c Config) pageSize() int {
	if c.DefaultPageSize <= 0 {
		return defaultPageSize
	}
	return c.DefaultPageSize
}

func (c Config) parse(text string) *SyntaxTree {
	if c.AllowEscapes {
		return ParseEscaped(text)
	}
	return Parse(text)
}
