package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config interface {
	EnvConfig
	TokenConfig
	StoreConfig
	FakeAPIConfig
}

type EnvConfig interface {
	GetAPIBaseURL() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type StoreConfig interface {
	GetTokenStore() string
	GetTokenFile() string
	GetRedisAddr() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type FakeAPIConfig interface {
	GetFakeAPIPort() string
	GetFakeAPISecret() string
}

type mainConfig struct {
	EnvVars
	Tokens
}

// New loads the configuration from the environment.
func New() (Config, error) {
	return Load(context.Background(), envconfig.OsLookuper())
}

// Load reads the configuration through lookuper, applying the defaults
// declared on EnvVars.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var vars EnvVars
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &vars,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("[config.Load] failed to process env vars: %w", err)
	}
	return mainConfig{EnvVars: vars}, nil
}

// Defaults returns the configuration with every default applied, ignoring the
// process environment.
func Defaults() Config {
	c, err := Load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		panic(fmt.Sprintf("[config.Defaults] %v", err))
	}
	return c
}
