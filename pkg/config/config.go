package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"database"`

	Extractor struct {
		BaseURL        string  `yaml:"base_url"`
		MaxPages       int     `yaml:"max_pages"`
		RateLimit      float64 `yaml:"rate_limit"`
		TableSelector  string  `yaml:"table_selector"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"extractor"`

	Parser struct {
		MaxNameLength int `yaml:"max_name_length"`
	} `yaml:"parser"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	UI struct {
		Progress bool `yaml:"progress"`
	} `yaml:"ui"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/fizko-dte/config.yaml"),
			"/etc/fizko-dte/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Database.TableName == "" {
		config.Database.TableName = "dtes"
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 100
	}

	if config.Extractor.MaxPages == 0 {
		config.Extractor.MaxPages = 10
	}
	if config.Extractor.RateLimit == 0 {
		config.Extractor.RateLimit = 2.0
	}
	if config.Extractor.TableSelector == "" {
		config.Extractor.TableSelector = "table"
	}
	if config.Extractor.TimeoutSeconds == 0 {
		config.Extractor.TimeoutSeconds = 30
	}

	if config.Parser.MaxNameLength == 0 {
		config.Parser.MaxNameLength = 255
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
}

func mergeWithEnv(config *Config) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if baseURL := os.Getenv("SII_BASE_URL"); baseURL != "" {
		config.Extractor.BaseURL = baseURL
	}
}
