package config

import (
	"log/slog"
	"os"

	"github.com/subosito/gotenv"
)

const defaultEnv = "dev"

// LoadEnv loads config/envs/.env.<env> on top of the process environment.
// Variables already set in the environment win over the file.
func LoadEnv(env string) {
	envFile := "config/envs/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("No .env file found, using OS environment", slog.String("file", envFile))
	}
}

// AppEnv returns APP_ENV, defaulting to dev.
func AppEnv() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = defaultEnv
	}
	return env
}
