package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	StoreBackend  string `yaml:"storeBackend"` // redis, postgres
	RedisURL      string `yaml:"redisURL"`
	PostgresDsn   string `yaml:"postgresDsn"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

// Load reads the config file at path, then applies the REDIS_URL and
// PORT environment overrides the original deployment relied on. An
// empty path yields a default config.
func Load(path string) (Config, error) {
	var config Config

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer file.Close()

		err = yaml.NewDecoder(file).Decode(&config)
		if err != nil {
			return Config{}, err
		}
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		config.Server.RedisURL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Listen = ":" + port
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":3001"
	}
	if config.Server.StoreBackend == "" {
		config.Server.StoreBackend = "redis"
	}
	if config.Server.RedisURL == "" {
		config.Server.RedisURL = "redis://localhost:6379"
	}

	return config, nil
}
