package config

import "envprobe/internal/logger"

// GlobalConfig contains all configuration sections for the application.
type GlobalConfig struct {
	LogConfig      logger.Config  `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	ScannerConfig  ScannerConfig  `json:"scanner_config,omitempty" yaml:"scanner_config,omitempty"`
	ExpanderConfig ExpanderConfig `json:"expander_config,omitempty" yaml:"expander_config,omitempty"`
	MinerConfig    MinerConfig    `json:"miner_config,omitempty" yaml:"miner_config,omitempty"`
	OutputConfig   OutputConfig   `json:"output_config,omitempty" yaml:"output_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values.
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:      logger.NewDefaultConfig(),
		ScannerConfig:  NewDefaultScannerConfig(),
		ExpanderConfig: NewDefaultExpanderConfig(),
		MinerConfig:    NewDefaultMinerConfig(),
		OutputConfig:   NewDefaultOutputConfig(),
	}
}
