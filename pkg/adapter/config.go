package adapter

import (
	"flag"
	"time"

	"github.com/robotalks/ps2serial/pkg/ps2"
)

// Config defines the adapter settings.
type Config struct {
	ExtraStopBit bool
	MaxResends   int
	BitSpin      int
	ResponseSpin int
	ReadBudget   int
	SettleDelay  time.Duration
	PollInterval time.Duration

	// Device settings applied after reset. SampleRate 0 and Resolution -1
	// keep the device defaults.
	SampleRate int
	Resolution int
	Scaling    bool
}

var defaultConfig = Config{
	ExtraStopBit: true,
	MaxResends:   ps2.DefaultMaxResends,
	BitSpin:      ps2.DefaultBitSpin,
	ResponseSpin: ps2.DefaultResponseSpin,
	ReadBudget:   ps2.DefaultBitSpin,
	SettleDelay:  10 * time.Millisecond,
	Resolution:   -1,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.ExtraStopBit, "extra-stop-bit", defaultConfig.ExtraStopBit, "Send 2 stop bits on the serial line.")
	flag.IntVar(&defaultConfig.MaxResends, "max-resends", defaultConfig.MaxResends, "Retransmissions allowed when the device asks to resend.")
	flag.IntVar(&defaultConfig.BitSpin, "bit-spin", defaultConfig.BitSpin, "Spin budget for a PS/2 clock transition.")
	flag.IntVar(&defaultConfig.ResponseSpin, "response-spin", defaultConfig.ResponseSpin, "Spin budget for the first bit of a PS/2 reply.")
	flag.IntVar(&defaultConfig.ReadBudget, "read-budget", defaultConfig.ReadBudget, "Spin budget for the rest of a partial PS/2 report.")
	flag.DurationVar(&defaultConfig.SettleDelay, "settle", defaultConfig.SettleDelay, "Delay around the serial identification bytes.")
	flag.DurationVar(&defaultConfig.PollInterval, "poll-interval", defaultConfig.PollInterval, "Sleep between main loop iterations, 0 to spin.")
	flag.IntVar(&defaultConfig.SampleRate, "sample-rate", defaultConfig.SampleRate, "PS/2 sample rate, 0 for device default.")
	flag.IntVar(&defaultConfig.Resolution, "resolution", defaultConfig.Resolution, "PS/2 resolution code 0-3, -1 for device default.")
	flag.BoolVar(&defaultConfig.Scaling, "scaling", defaultConfig.Scaling, "Enable PS/2 2:1 scaling.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller on hw using the config.
func (c *Config) NewController(hw Hardware) *Controller {
	return NewController(hw, *c)
}
