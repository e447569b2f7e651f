package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`
	SummaryBaseURL string  `mapstructure:"summary_base_url" yaml:"summary_base_url"`
	SummaryModel   string  `mapstructure:"summary_model" yaml:"summary_model"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	SummaryTimeout int     `mapstructure:"summary_timeout_sec" yaml:"summary_timeout_sec"`
	StoreDir       string  `mapstructure:"store_dir" yaml:"store_dir"`
	SeedFile       string  `mapstructure:"seed_file" yaml:"seed_file"`

	// Classifier heuristics (judgment calls, therefore tunable)
	MaxUniqueRatio   float64 `mapstructure:"max_unique_ratio" yaml:"max_unique_ratio"`
	RatioMinValid    int     `mapstructure:"ratio_min_valid" yaml:"ratio_min_valid"`
	MaxAverageLength float64 `mapstructure:"max_average_length" yaml:"max_average_length"`
	MaxCategories    int     `mapstructure:"max_categories" yaml:"max_categories"`
	CorrelationCap   int     `mapstructure:"correlation_cap" yaml:"correlation_cap"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.formlens/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".formlens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FORMLENS")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("summary_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("summary_model", "openai/gpt-4o-mini")
	v.SetDefault("temperature", 0.1)
	v.SetDefault("max_tokens", 200)
	v.SetDefault("summary_timeout_sec", 30)
	// Classifier heuristic defaults
	v.SetDefault("max_unique_ratio", 0.8)
	v.SetDefault("ratio_min_valid", 5)
	v.SetDefault("max_average_length", 100)
	v.SetDefault("max_categories", 50)
	v.SetDefault("correlation_cap", 6)
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".formlens")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve store_dir default: ~/.formlens/sessions
	if c.StoreDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.StoreDir = filepath.Join(home, ".formlens", "sessions")
	}
	return &c, nil
}
