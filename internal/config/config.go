// Package config supplies process-package defaults (poll interval,
// termination grace period, transient retry delay) that can be
// overridden by environment variable or an optional config file,
// backed by github.com/spf13/viper instead of a handful of package
// constants.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults holds every tunable this library reads, as resolved by Load
// from built-in values, the environment and an optional config file.
type Defaults struct {
	// PollInterval is how often Wait polls a running child for reap.
	PollInterval time.Duration
	// TerminationGrace is how long Close waits after SIGTERM before
	// escalating to SIGKILL.
	TerminationGrace time.Duration
	// TransientRetryDelay is the sleep used by ReadAll/WriteAll after
	// a transient errno (EINTR/EAGAIN).
	TransientRetryDelay time.Duration
}

const envPrefix = "PROCX"

// Load reads defaults from the environment (PROCX_POLL_INTERVAL, etc)
// and an optional procx.yaml/json/toml on the usual viper search path,
// falling back to the library's built-in defaults.
func Load() Defaults {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("poll_interval", 10*time.Millisecond)
	v.SetDefault("termination_grace", 5*time.Second)
	v.SetDefault("transient_retry_delay", 100*time.Millisecond)

	v.SetConfigName("procx")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config")
	_ = v.ReadInConfig() // absence of a config file is not an error

	return Defaults{
		PollInterval:        v.GetDuration("poll_interval"),
		TerminationGrace:    v.GetDuration("termination_grace"),
		TransientRetryDelay: v.GetDuration("transient_retry_delay"),
	}
}
