package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvHost = "MORSELIVE_HOST"
	EnvPort = "MORSELIVE_PORT"
)

// EnvConfig holds values taken from the environment.
type EnvConfig struct {
	Host *string
	Port *int
}

// LoadEnv reads the device overrides from the environment, loading a .env
// file from the working directory first if one exists. Variables already set
// in the environment take precedence over the file.
func LoadEnv() (EnvConfig, error) {
	_ = godotenv.Load()
	return envFrom(os.Getenv)
}

// LoadEnvFile is like LoadEnv but reads the given dotenv file without
// touching the process environment.
func LoadEnvFile(path string) (EnvConfig, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return EnvConfig{}, fmt.Errorf("failed to read env file: %w", err)
	}
	return envFrom(func(key string) string { return values[key] })
}

func envFrom(get func(string) string) (EnvConfig, error) {
	var cfg EnvConfig
	if host := get(EnvHost); host != "" {
		cfg.Host = &host
	}
	if port := get(EnvPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return EnvConfig{}, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.Port = &p
	}
	return cfg, nil
}
