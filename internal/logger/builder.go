package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"envprobe/internal/errorwrapper"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Builder assembles a zerolog logger from a Config.
type Builder struct {
	cfg Config
}

// NewBuilder creates a new logger builder with default configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: NewDefaultConfig()}
}

// WithConfig sets the logger configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// Build constructs the logger. Console output goes to stderr so the
// discovery stream on stdout stays clean for piping.
func (b *Builder) Build() (zerolog.Logger, error) {
	level := LevelForMode(b.cfg.Mode)

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}}

	if b.cfg.EnableFile && b.cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(b.cfg.FilePath), 0755); err != nil {
			return zerolog.Logger{}, errorwrapper.WrapError(err, "failed to create log directory")
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   b.cfg.FilePath,
			MaxSize:    b.cfg.MaxSizeMB,
			MaxBackups: b.cfg.MaxBackups,
			LocalTime:  true,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()

	return logger, nil
}

// New creates a logger from the given configuration.
func New(cfg Config) (zerolog.Logger, error) {
	return NewBuilder().WithConfig(cfg).Build()
}
