package blynk

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/blynkgo/client/action"
	"github.com/blynkgo/client/internal/logging"
	"github.com/blynkgo/client/internal/metrics"
	"github.com/blynkgo/client/internal/transport"
	"github.com/blynkgo/client/store"
)

// Config holds every tunable spec.md §6 lists for the controller.
// Loaded from environment variables and/or a YAML file through viper,
// replacing the teacher's bare os.Getenv calls in cli/cli.go.
type Config struct {
	Host string
	Port int

	ResponseTimeout      time.Duration
	PingInterval         time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int

	// TLSVerify is the pluggable certificate verification hook from
	// spec.md §9. Nil means accept-all, matching the reference client's
	// self-signed-friendly default.
	TLSVerify transport.VerifyPolicy

	// AppName is sent as the trailing field of the LOGIN/SHARE_LOGIN bodies
	// the reconnect loop replays. Connect, ConnectWithShareToken and
	// Register send the appName argument they are given instead.
	AppName string

	// Codec serializes the Structured action's domain records. Defaults
	// to action.JSONCodec{}.
	Codec action.StructuredCodec

	// Store backs the optional profile/event cache described in
	// SPEC_FULL.md §4. Defaults to store.Nop{} (disabled).
	Store store.Store

	// Metrics, if non-nil, is registered against the transport and
	// controller counters/gauges described in SPEC_FULL.md §5/§6.
	Metrics *metrics.Collectors

	// Log receives diagnostic lines (read loop termination, ping
	// failures, reconnect attempts). A nil Logger discards them.
	Log *logging.Logger
}

// DefaultConfig returns a Config with spec.md §6's defaults; Host must
// still be set by the caller.
func DefaultConfig() Config {
	return Config{
		Port:                 9443,
		ResponseTimeout:      10 * time.Second,
		PingInterval:         10 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: 10,
		AppName:              "blynkgo",
		Codec:                action.JSONCodec{},
		Store:                store.Nop{},
	}
}

// LoadConfig layers a Config on top of DefaultConfig from environment
// variables (BLYNK_HOST, BLYNK_PORT, ...) and, if path is non-empty, a
// YAML file, through a *viper.Viper instance — grounded on the teacher's
// env-var configuration surface in cli/cli.go, generalized from
// os.Getenv to viper's layered env+file resolution.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("BLYNK")
	v.AutomaticEnv()
	v.SetDefault("port", cfg.Port)
	v.SetDefault("response_timeout", cfg.ResponseTimeout)
	v.SetDefault("ping_interval", cfg.PingInterval)
	v.SetDefault("reconnect_base_delay", cfg.ReconnectBaseDelay)
	v.SetDefault("reconnect_max_delay", cfg.ReconnectMaxDelay)
	v.SetDefault("max_reconnect_attempts", cfg.MaxReconnectAttempts)
	v.SetDefault("app_name", cfg.AppName)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("blynk: load config: %w", err)
		}
	}

	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.ResponseTimeout = v.GetDuration("response_timeout")
	cfg.PingInterval = v.GetDuration("ping_interval")
	cfg.ReconnectBaseDelay = v.GetDuration("reconnect_base_delay")
	cfg.ReconnectMaxDelay = v.GetDuration("reconnect_max_delay")
	cfg.MaxReconnectAttempts = v.GetInt("max_reconnect_attempts")
	cfg.AppName = v.GetString("app_name")

	return cfg, nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = d.ResponseTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = d.PingInterval
	}
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = d.ReconnectBaseDelay
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = d.ReconnectMaxDelay
	}
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = d.MaxReconnectAttempts
	}
	if c.AppName == "" {
		c.AppName = d.AppName
	}
	if c.Codec == nil {
		c.Codec = d.Codec
	}
	if c.Store == nil {
		c.Store = d.Store
	}
	return c
}

func (c Config) tlsConfig() *tls.Config {
	if c.TLSVerify == nil {
		return transport.InsecureAcceptAllConfig()
	}
	return transport.WithVerifyPolicy(c.TLSVerify)
}
