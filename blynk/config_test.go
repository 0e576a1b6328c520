package blynk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blynkgo/client/action"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 9443, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ResponseTimeout)
	require.Equal(t, 10*time.Second, cfg.PingInterval)
	require.Equal(t, 2*time.Second, cfg.ReconnectBaseDelay)
	require.Equal(t, 30*time.Second, cfg.ReconnectMaxDelay)
	require.Equal(t, 10, cfg.MaxReconnectAttempts)
	require.Equal(t, "blynkgo", cfg.AppName)
	require.IsType(t, action.JSONCodec{}, cfg.Codec)
}

func TestWithDefaultsFillsOnlyZeroFields(t *testing.T) {
	cfg := Config{Host: "example.com", Port: 1234}
	filled := cfg.withDefaults()

	require.Equal(t, "example.com", filled.Host)
	require.Equal(t, 1234, filled.Port)
	require.Equal(t, DefaultConfig().ResponseTimeout, filled.ResponseTimeout)
	require.Equal(t, DefaultConfig().AppName, filled.AppName)
	require.NotNil(t, filled.Codec)
	require.NotNil(t, filled.Store)
}

func TestTLSConfigDefaultsToAcceptAll(t *testing.T) {
	cfg := DefaultConfig()
	tlsCfg := cfg.tlsConfig()
	require.True(t, tlsCfg.InsecureSkipVerify)
	require.Nil(t, tlsCfg.VerifyPeerCertificate)
}

func TestLoadConfigAppliesEnvPrefix(t *testing.T) {
	t.Setenv("BLYNK_HOST", "blynk.example.com")
	t.Setenv("BLYNK_PORT", "8443")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "blynk.example.com", cfg.Host)
	require.Equal(t, 8443, cfg.Port)
	require.Equal(t, DefaultConfig().AppName, cfg.AppName)
}
