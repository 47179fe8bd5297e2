package telemetry

import (
	"flag"
	"os"
	"time"
)

// Config defines the telemetry options.
type Config struct {
	// URL of the endpoint, empty to disable, e.g.
	// mqtt://localhost:1883/ps2serial/
	URL string
	// AdapterID identifies this adapter, derived from the machine ID if empty.
	AdapterID     string
	StatsInterval time.Duration
}

var defaultConfig = Config{
	StatsInterval: 5 * time.Second,
}

func init() {
	if val := os.Getenv("PS2SIM_TELEMETRY"); val != "" {
		defaultConfig.URL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "telemetry", defaultConfig.URL, "Telemetry URL (mqtt://, ws://, tcp://)")
	flag.StringVar(&defaultConfig.AdapterID, "id", defaultConfig.AdapterID, "Adapter ID in telemetry")
	flag.DurationVar(&defaultConfig.StatsInterval, "stats-interval", defaultConfig.StatsInterval, "Interval of stats events, 0 to disable")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Enabled tells whether a telemetry endpoint is configured.
func (c *Config) Enabled() bool {
	return c.URL != ""
}

// ID returns AdapterID or the machine derived default.
func (c *Config) ID() string {
	if c.AdapterID == "" {
		c.AdapterID = DefaultAdapterID()
	}
	return c.AdapterID
}

// Dial connects the configured endpoint.
func (c *Config) Dial() (Link, error) {
	return Dial(c.URL, c.ID())
}
