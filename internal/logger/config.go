package logger

import "github.com/rs/zerolog"

// Verbosity modes supported by the CLI. They control console output
// only; the result file always receives every discovery.
const (
	ModeDebug     = "debug"
	ModeVerbose   = "verbose"
	ModeDiscovery = "discovery"
	ModeQuiet     = "quiet"
)

// Config holds configuration for logger setup.
type Config struct {
	Mode       string `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,oneof=debug verbose discovery quiet"`
	EnableFile bool   `json:"enable_file,omitempty" yaml:"enable_file,omitempty"`
	FilePath   string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty" validate:"omitempty,gte=1"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty" validate:"omitempty,gte=0"`
}

// NewDefaultConfig returns the default logger configuration.
func NewDefaultConfig() Config {
	return Config{
		Mode:       ModeDiscovery,
		EnableFile: false,
		MaxSizeMB:  100,
		MaxBackups: 3,
	}
}

// LevelForMode maps a verbosity mode to a zerolog level. Recoverable
// per-candidate errors are logged at debug level, run milestones at
// info level, so "discovery" mode keeps the console free of both.
func LevelForMode(mode string) zerolog.Level {
	switch mode {
	case ModeDebug:
		return zerolog.DebugLevel
	case ModeVerbose:
		return zerolog.InfoLevel
	case ModeQuiet:
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// EchoDiscoveries reports whether newly committed discoveries should
// be echoed to the console in the given mode.
func EchoDiscoveries(mode string) bool {
	return mode != ModeQuiet
}
