package config

// OutputConfig defines where the discovery stream is persisted.
type OutputConfig struct {
	OutputFile   string `json:"output_file,omitempty" yaml:"output_file,omitempty" validate:"required"`
	BackupSuffix string `json:"backup_suffix,omitempty" yaml:"backup_suffix,omitempty" validate:"required"`
}

// NewDefaultOutputConfig creates default output configuration.
func NewDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		OutputFile:   "env-enum.txt",
		BackupSuffix: ".bak",
	}
}
