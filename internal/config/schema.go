package config

// Config holds lumen configuration.
// Stored at: ~/.lumen/config.yaml (or ./config.yaml)
type Config struct {
	Server           ServerCfg               `mapstructure:"server" yaml:"server"`
	Pipeline         PipelineCfg             `mapstructure:"pipeline" yaml:"pipeline"`
	Generators       map[string]GeneratorCfg `mapstructure:"generators" yaml:"generators"`
	DefaultGenerator string                  `mapstructure:"default_generator" yaml:"default_generator"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// PipelineCfg configures the chunked processing pipeline.
type PipelineCfg struct {
	// MaxConcurrency is the chunk worker budget per document.
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	// MaxRetries is the attempt budget per chunk.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	// AttemptTimeoutSeconds bounds each generation attempt.
	AttemptTimeoutSeconds int `mapstructure:"attempt_timeout_seconds" yaml:"attempt_timeout_seconds"`
	// ProgressTTLMinutes is how long finished progress records are kept.
	ProgressTTLMinutes int `mapstructure:"progress_ttl_minutes" yaml:"progress_ttl_minutes"`
	// SweepIntervalSeconds is how often terminal progress records are swept.
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" yaml:"sweep_interval_seconds"`
}

// GeneratorCfg configures a generation provider.
type GeneratorCfg struct {
	// Type selects the client implementation: "openai" or "openrouter".
	Type  string `mapstructure:"type" yaml:"type"`
	Model string `mapstructure:"model" yaml:"model"`
	// APIKey supports ${ENV_VAR} references, resolved at registry load.
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Pipeline: PipelineCfg{
			MaxConcurrency:        3,
			MaxRetries:            3,
			AttemptTimeoutSeconds: 300,
			ProgressTTLMinutes:    10,
			SweepIntervalSeconds:  60,
		},
		Generators: map[string]GeneratorCfg{
			"openai": {
				Type:           "openai",
				Model:          "gpt-4o-mini",
				APIKey:         "${OPENAI_API_KEY}",
				TimeoutSeconds: 300,
				Enabled:        true,
			},
			"openrouter": {
				Type:           "openrouter",
				Model:          "google/gemini-2.0-flash-001",
				APIKey:         "${OPENROUTER_API_KEY}",
				TimeoutSeconds: 300,
				Enabled:        false,
			},
		},
		DefaultGenerator: "openai",
	}
}

// GetGenerator returns a generator config by name.
func (c *Config) GetGenerator(name string) (GeneratorCfg, bool) {
	cfg, ok := c.Generators[name]
	return cfg, ok
}

// EnabledGenerators returns all enabled generator configs.
func (c *Config) EnabledGenerators() map[string]GeneratorCfg {
	result := make(map[string]GeneratorCfg)
	for name, cfg := range c.Generators {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
