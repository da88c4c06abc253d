package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"instrcli/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Tracing TracingConfig `yaml:"tracing" envconfig:"TRACING"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/instrcli.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// TracingConfig contains OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED" default:"false"`
}

// ReportConfig contains default report generation settings. CLI flags
// override these per run.
type ReportConfig struct {
	FaceStart       int     `yaml:"face_start" envconfig:"FACE_START" default:"1"`
	FaceCount       int     `yaml:"face_count" envconfig:"FACE_COUNT" default:"5"`
	CoreStart       int     `yaml:"core_start" envconfig:"CORE_START" default:"6"`
	CoreCount       int     `yaml:"core_count" envconfig:"CORE_COUNT" default:"5"`
	FurnaceMin      int     `yaml:"furnace_min" envconfig:"FURNACE_MIN" default:"300"`
	FurnaceMax      int     `yaml:"furnace_max" envconfig:"FURNACE_MAX" default:"399"`
	MinuteTolerance float64 `yaml:"minute_tolerance" envconfig:"MINUTE_TOLERANCE" default:"0.5"`
}

// Options converts the configured report defaults to domain options.
func (r ReportConfig) Options() domain.ReportOptions {
	return domain.ReportOptions{
		FaceStart:       r.FaceStart,
		FaceCount:       r.FaceCount,
		CoreStart:       r.CoreStart,
		CoreCount:       r.CoreCount,
		FurnaceMin:      r.FurnaceMin,
		FurnaceMax:      r.FurnaceMax,
		MinuteTolerance: r.MinuteTolerance,
	}
}

// Load loads configuration with precedence env > config.yaml > defaults
func Load() (*Config, error) {
	var cfg Config

	// envconfig fills every field from its default tag or the environment
	if err := envconfig.Process("INSTR", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Overlay the config file, if one exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		applyFileConfig(&cfg, fileCfg)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// fileConfig mirrors Config with pointer fields so an omitted key can be
// told apart from an explicit zero in the YAML file.
type fileConfig struct {
	Logging struct {
		Level       *string `yaml:"level"`
		Format      *string `yaml:"format"`
		Output      *string `yaml:"output"`
		FilePath    *string `yaml:"file_path"`
		Development *bool   `yaml:"development"`
	} `yaml:"logging"`
	Tracing struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"tracing"`
	Report struct {
		FaceStart       *int     `yaml:"face_start"`
		FaceCount       *int     `yaml:"face_count"`
		CoreStart       *int     `yaml:"core_start"`
		CoreCount       *int     `yaml:"core_count"`
		FurnaceMin      *int     `yaml:"furnace_min"`
		FurnaceMax      *int     `yaml:"furnace_max"`
		MinuteTolerance *float64 `yaml:"minute_tolerance"`
	} `yaml:"report"`
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*fileConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyFileConfig overlays file values onto cfg. By this point envconfig
// has filled every field from either the environment or its default tag,
// so a zero check cannot tell the two apart; the environment is checked
// directly, and a file value only applies where the env var is unset.
func applyFileConfig(cfg *Config, file *fileConfig) {
	setString := func(dst *string, v *string, envVar string) {
		if v != nil && !envSet(envVar) {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool, envVar string) {
		if v != nil && !envSet(envVar) {
			*dst = *v
		}
	}
	setInt := func(dst *int, v *int, envVar string) {
		if v != nil && !envSet(envVar) {
			*dst = *v
		}
	}
	setFloat := func(dst *float64, v *float64, envVar string) {
		if v != nil && !envSet(envVar) {
			*dst = *v
		}
	}

	setString(&cfg.Logging.Level, file.Logging.Level, "INSTR_LOGGING_LEVEL")
	setString(&cfg.Logging.Format, file.Logging.Format, "INSTR_LOGGING_FORMAT")
	setString(&cfg.Logging.Output, file.Logging.Output, "INSTR_LOGGING_OUTPUT")
	setString(&cfg.Logging.FilePath, file.Logging.FilePath, "INSTR_LOGGING_FILE_PATH")
	setBool(&cfg.Logging.Development, file.Logging.Development, "INSTR_LOGGING_DEVELOPMENT")

	setBool(&cfg.Tracing.Enabled, file.Tracing.Enabled, "INSTR_TRACING_ENABLED")

	setInt(&cfg.Report.FaceStart, file.Report.FaceStart, "INSTR_REPORT_FACE_START")
	setInt(&cfg.Report.FaceCount, file.Report.FaceCount, "INSTR_REPORT_FACE_COUNT")
	setInt(&cfg.Report.CoreStart, file.Report.CoreStart, "INSTR_REPORT_CORE_START")
	setInt(&cfg.Report.CoreCount, file.Report.CoreCount, "INSTR_REPORT_CORE_COUNT")
	setInt(&cfg.Report.FurnaceMin, file.Report.FurnaceMin, "INSTR_REPORT_FURNACE_MIN")
	setInt(&cfg.Report.FurnaceMax, file.Report.FurnaceMax, "INSTR_REPORT_FURNACE_MAX")
	setFloat(&cfg.Report.MinuteTolerance, file.Report.MinuteTolerance, "INSTR_REPORT_MINUTE_TOLERANCE")
}

// envSet reports whether the variable is present in the environment,
// even when set to an empty string.
func envSet(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Logging.Format != "json" {
		// Always JSON; text logs break the log shipping the tool grew up with
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/instrcli.log"
	}

	if c.Report.FurnaceMin > c.Report.FurnaceMax {
		return fmt.Errorf("furnace_min %d exceeds furnace_max %d", c.Report.FurnaceMin, c.Report.FurnaceMax)
	}

	if c.Report.MinuteTolerance <= 0 {
		return fmt.Errorf("minute_tolerance must be positive, got %v", c.Report.MinuteTolerance)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "both",
			FilePath:    "logs/instrcli.log",
			Development: false,
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
		Report: ReportConfig{
			FaceStart:       1,
			FaceCount:       5,
			CoreStart:       6,
			CoreCount:       5,
			FurnaceMin:      300,
			FurnaceMax:      399,
			MinuteTolerance: 0.5,
		},
	}
}
