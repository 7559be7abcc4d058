package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/ingest-api/config"
)

func TestValidateServiceConfig(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		require.Error(t, ValidateServiceConfig(nil))
	})

	t.Run("valid services", func(t *testing.T) {
		cfg := &config.AppConfig{Services: "http,retrier"}
		require.NoError(t, ValidateServiceConfig(cfg))
	})

	t.Run("unknown service", func(t *testing.T) {
		cfg := &config.AppConfig{Services: "http,reaper"}
		require.Error(t, ValidateServiceConfig(cfg))
	})
}

func TestGetEnabledServices(t *testing.T) {
	assert.Empty(t, GetEnabledServices(nil))

	cfg := &config.AppConfig{Services: "retrier"}
	assert.Equal(t, []string{"retrier"}, GetEnabledServices(cfg))

	cfg.Services = "bogus"
	assert.Empty(t, GetEnabledServices(cfg))
}

func TestNewServices_RequiresDeps(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)
}
