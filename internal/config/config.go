package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// LogConfig controls logging for both binaries
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// PollerConfig is the configuration for the polling pipeline
type PollerConfig struct {
	Env string    `yaml:"env" env:"APP_ENV" env-default:"dev"`
	Log LogConfig `yaml:"log"`

	Source struct {
		BaseURL  string `yaml:"base_url" env:"SOURCE_BASE_URL" env-default:"http://localhost:8082/api"`
		Username string `yaml:"username" env:"SOURCE_USERNAME" env-default:"admin"`
		Password string `yaml:"password" env:"SOURCE_PASSWORD" env-default:"admin"`
		Timeout  int    `yaml:"timeout" env:"SOURCE_TIMEOUT" env-default:"10"` // seconds
	} `yaml:"source"`

	Forward struct {
		URL     string `yaml:"url" env:"FORWARD_URL" env-default:"http://localhost:4000/events"`
		Timeout int    `yaml:"timeout" env:"FORWARD_TIMEOUT" env-default:"5"` // seconds
	} `yaml:"forward"`

	Poll struct {
		Interval int `yaml:"interval" env:"POLL_INTERVAL" env-default:"1"` // seconds
	} `yaml:"poll"`

	CursorFile string `yaml:"cursor_file" env:"CURSOR_FILE" env-default:"lastSentPositions.json"`

	Server struct {
		Port int `yaml:"port" env:"SERVER_PORT" env-default:"2000"`
	} `yaml:"server"`
}

// TranslatorConfig is the configuration for the translation pipeline
type TranslatorConfig struct {
	Env string    `yaml:"env" env:"APP_ENV" env-default:"dev"`
	Log LogConfig `yaml:"log"`

	Server struct {
		Port int `yaml:"port" env:"SERVER_PORT" env-default:"4000"`
	} `yaml:"server"`

	Downstream struct {
		URL     string `yaml:"url" env:"DOWNSTREAM_URL" env-default:"http://localhost:8090/data-integration/integration/gps"`
		Token   string `yaml:"token" env:"DOWNSTREAM_TOKEN"`
		Timeout int    `yaml:"timeout" env:"DOWNSTREAM_TIMEOUT" env-default:"60"` // seconds
	} `yaml:"downstream"`

	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"translator.db"`
}

// LoadPoller loads the poller configuration from a YAML file with
// environment variable overrides. A missing file is not an error;
// the configuration is then read from the environment only.
func LoadPoller(path string) (*PollerConfig, error) {
	var cfg PollerConfig
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadTranslator loads the translator configuration, same rules as LoadPoller.
func LoadTranslator(path string) (*TranslatorConfig, error) {
	var cfg TranslatorConfig
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func load(path string, cfg interface{}) error {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			return nil
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("failed to read config from environment: %w", err)
	}
	return nil
}
