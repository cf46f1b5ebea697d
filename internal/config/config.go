package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "telcoclean/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. TELCO_RULES_USAGE_CAP_GB.
const EnvPrefix = "TELCO"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Rules     RulesConfig     `yaml:"rules" envconfig:"RULES"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths configuration.
// When Workbook is set the tables are read from its sheets instead of InputDir.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required_without=Workbook"`
	Workbook  string `yaml:"workbook" envconfig:"WORKBOOK"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// RulesConfig holds the remediation thresholds applied by the outlier stage.
type RulesConfig struct {
	UsageCapGB        float64 `yaml:"usage_cap_gb" envconfig:"USAGE_CAP_GB" validate:"gt=0"`
	BillFlagAmount    float64 `yaml:"bill_flag_amount" envconfig:"BILL_FLAG_AMOUNT" validate:"gt=0"`
	OutageFlagMinutes float64 `yaml:"outage_flag_minutes" envconfig:"OUTAGE_FLAG_MINUTES" validate:"gt=0"`
}

// ReportConfig holds the thresholds used by the pre-clean quality profile.
// They are independent of RulesConfig.
type ReportConfig struct {
	UsageOutlierGB    float64 `yaml:"usage_outlier_gb" envconfig:"USAGE_OUTLIER_GB" validate:"gt=0"`
	BillOutlierAmount float64 `yaml:"bill_outlier_amount" envconfig:"BILL_OUTLIER_AMOUNT" validate:"gt=0"`
}

// ExportConfig controls how cleaned tables are persisted.
type ExportConfig struct {
	Workbook     bool   `yaml:"workbook" envconfig:"WORKBOOK"`
	WorkbookName string `yaml:"workbook_name" envconfig:"WORKBOOK_NAME" validate:"required_if=Workbook true"`
	BOMPrefix    bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
}

// ServerConfig contains HTTP server configuration. JobRetention is how long
// finished runs stay queryable; 0 keeps them.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RunTimeout      time.Duration   `yaml:"run_timeout" envconfig:"RUN_TIMEOUT" validate:"gt=0"`
	JobRetention    time.Duration   `yaml:"job_retention" envconfig:"JOB_RETENTION" validate:"gte=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"required_if=Enabled true,gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
}

// Load builds the configuration in three layers: Default(), then the YAML
// file at configFile (or the first one found in the usual locations), then
// TELCO_* environment variables.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks the struct tags of every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/telcoclean.log",
		},
		Paths: PathsConfig{
			InputDir:  "data",
			OutputDir: "data/clean",
			LogsDir:   "logs",
		},
		Rules: RulesConfig{
			UsageCapGB:        100,
			BillFlagAmount:    2000,
			OutageFlagMinutes: 1440,
		},
		Report: ReportConfig{
			UsageOutlierGB:    500,
			BillOutlierAmount: 5000,
		},
		Export: ExportConfig{
			Workbook:     false,
			WorkbookName: "telecom_clean.xlsx",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RunTimeout:      5 * time.Minute,
			JobRetention:    24 * time.Hour,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "telcoclean",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
		},
	}
}
