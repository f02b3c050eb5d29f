package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/layebamba/Fadj-Ma-Frontend/internal/config"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8000/api", c.GetAPIBaseURL())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "file", c.GetTokenStore())
	require.Equal(t, ":8000", c.GetFakeAPIPort())
	require.Equal(t, time.Hour, c.GetAccessTokenExpiry())
	require.Equal(t, 7*24*time.Hour, c.GetRefreshTokenExpiry())
}

func TestLoad_Overrides(t *testing.T) {
	c, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"FADJMA_API_URL": "https://pharma.example.com/api/",
		"TOKEN_STORE":    "Redis",
		"REDIS_DB":       "3",
		"FAKEAPI_PORT":   ":9000",
	}))
	require.NoError(t, err)

	require.Equal(t, "https://pharma.example.com/api", c.GetAPIBaseURL())
	require.Equal(t, "redis", c.GetTokenStore())
	require.Equal(t, 3, c.GetRedisDB())
	require.Equal(t, ":9000", c.GetFakeAPIPort())
}

func TestLoad_InvalidNumber(t *testing.T) {
	_, err := config.Load(context.Background(), envconfig.MapLookuper(map[string]string{
		"REDIS_DB": "three",
	}))
	require.Error(t, err)
}
