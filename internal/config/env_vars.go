package config

import (
	"strings"
)

const defaultAPIBaseURL = "http://localhost:8000/api"

// EnvVars holds the values read from the process environment.
type EnvVars struct {
	APIBaseURL string `env:"FADJMA_API_URL, default=http://localhost:8000/api"`
	AppName    string `env:"APP_NAME, default=Fadj-Ma"`
	Env        string `env:"ENV, default=DEV"`
	LogLevel   string `env:"LOG_LEVEL, default=info"`

	TokenStore  string `env:"TOKEN_STORE, default=file"`
	TokenFile   string `env:"TOKEN_FILE"`
	RedisAddr   string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB     int    `env:"REDIS_DB, default=0"`
	RedisPrefix string `env:"REDIS_PREFIX, default=fadjma:tokens:"`

	FakeAPIPort   string `env:"FAKEAPI_PORT, default=8000"`
	FakeAPISecret string `env:"FAKEAPI_JWT_SECRET, default=dev-secret"`
}

var _ EnvConfig = EnvVars{}
var _ StoreConfig = EnvVars{}
var _ FakeAPIConfig = EnvVars{}

// GetAPIBaseURL returns the REST backend base address without a trailing slash.
func (e EnvVars) GetAPIBaseURL() string {
	base := strings.TrimRight(e.APIBaseURL, "/")
	if base == "" {
		return defaultAPIBaseURL
	}
	return base
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetTokenStore returns the credential store backend: memory, file or redis.
func (e EnvVars) GetTokenStore() string {
	return strings.ToLower(e.TokenStore)
}

// GetTokenFile returns the path of the file store; empty means the default
// location under the user's home directory.
func (e EnvVars) GetTokenFile() string {
	return e.TokenFile
}

func (e EnvVars) GetRedisAddr() string {
	return e.RedisAddr
}

func (e EnvVars) GetRedisDB() int {
	return e.RedisDB
}

func (e EnvVars) GetRedisPrefix() string {
	return e.RedisPrefix
}

func (e EnvVars) GetFakeAPIPort() string {
	port := e.FakeAPIPort
	if port != "" && port[0] != ':' {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetFakeAPISecret() string {
	return e.FakeAPISecret
}
