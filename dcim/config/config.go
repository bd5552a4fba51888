// Package config loads and validates the declarative sorter configuration
// and turns it into the immutable pattern/sorting model.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	internal "dcimsort/dcim"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Sorter SorterConfig `mapstructure:"sorter"`
}

// SorterConfig describes the two segment chains and the collision policy.
type SorterConfig struct {
	DuplicateResolution DuplicateResolutionConfig `mapstructure:"duplicateResolution"`
	Supported           ChainConfig               `mapstructure:"supported"`
	Fallback            ChainConfig               `mapstructure:"fallback"`
}

// DuplicateResolutionConfig selects the collision strategy.
type DuplicateResolutionConfig struct {
	Strategy string `mapstructure:"strategy"`
	Mode     string `mapstructure:"mode"`
}

// ChainConfig holds the segment list of one pipeline.
type ChainConfig struct {
	Segments []SegmentConfig `mapstructure:"segments"`
}

// SegmentConfig is the declarative form of one segment. Type selects the
// variant; the remaining fields are type-specific and ignored by the other
// variants.
type SegmentConfig struct {
	Type  string `mapstructure:"type"`
	Index int    `mapstructure:"index"`

	// MakeModelPattern
	Parts             []PartConfig `mapstructure:"parts"`
	ReplaceSpaces     *bool        `mapstructure:"replaceSpaces"`
	DefaultMake       string       `mapstructure:"defaultMake"`
	DefaultModel      string       `mapstructure:"defaultModel"`
	Separator         string       `mapstructure:"separator"`
	CaseNormalization string       `mapstructure:"caseNormalization"`
	Fallback          string       `mapstructure:"fallback"`

	// ScreenshotPattern
	Value           string `mapstructure:"value"`
	FilenamePattern string `mapstructure:"filenamePattern"`
	CaseInsensitive bool   `mapstructure:"caseInsensitive"`

	// DateTimePattern
	DefaultValue        string `mapstructure:"defaultValue"`
	FallbackFsTimestamp bool   `mapstructure:"fallbackFsTimestamp"`

	// SimpleFileTypePattern
	Labels map[string]string `mapstructure:"labels"`
}

// PartConfig is one ordered sub-part of a MakeModel or DateTime segment.
type PartConfig struct {
	Index int    `mapstructure:"index"`
	Value string `mapstructure:"value"`
}

// Load reads configuration from file or environment variables. When no
// config file exists at the searched locations, the built-in default sorter
// layout is returned.
func Load(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("sorter.duplicateResolution.strategy", "ignore")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns the sorter layout used when no config file is
// present: device and date directories for metadata-capable files, coarse
// type directories with a filesystem-date fallback for everything else.
func DefaultConfig() *Config {
	return &Config{
		Sorter: SorterConfig{
			DuplicateResolution: DuplicateResolutionConfig{Strategy: "ignore"},
			Supported: ChainConfig{
				Segments: []SegmentConfig{
					{Type: TypeMakeModelPattern, Index: 0, Fallback: "unknown_device"},
					{Type: TypeDateTimePattern, Index: 1, FallbackFsTimestamp: true},
					{Type: TypeScreenshotPattern, Index: 2},
				},
			},
			Fallback: ChainConfig{
				Segments: []SegmentConfig{
					{Type: TypeSimpleFileTypePattern, Index: 0},
					{Type: TypeDateTimePattern, Index: 1, FallbackFsTimestamp: true},
				},
			},
		},
	}
}
