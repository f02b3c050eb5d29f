package logging_test

import (
	"bytes"
	"testing"

	"github.com/layebamba/Fadj-Ma-Frontend/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, logging.ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, logging.ParseLevel(" warning "))
	require.Equal(t, zerolog.Disabled, logging.ParseLevel("off"))
	require.Equal(t, zerolog.InfoLevel, logging.ParseLevel("nonsense"))
}

func TestInit_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Init(logging.Options{Level: "info", Output: &buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	logger.Debug().Msg("hidden")
	logger.Info().Str("component", "test").Msg("visible")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"component":"test"`)
}
