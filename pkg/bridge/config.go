package bridge

import (
	"flag"
	"os"
	"strings"

	"github.com/robotalks/newbridge/pkg/serial"
)

// Config defines the configurations of a Bridge.
type Config struct {
	Device        string
	Baud          int
	Rounds        int
	BufferSize    int
	LaunchCommand string
	TrimSpace     bool
	Timing        Timing
}

var defaultConfig = Config{
	Device:        "/dev/ttyATH0",
	Baud:          DefaultBaud,
	Rounds:        DefaultRounds,
	BufferSize:    DefaultBufferSize,
	LaunchCommand: DefaultLaunchCommand,
	Timing:        DefaultTiming(),
}

func init() {
	if val := os.Getenv("NEWBRIDGE_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial device connected to the peer.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
	flag.IntVar(&defaultConfig.Rounds, "rounds", defaultConfig.Rounds, "Number of shell sync rounds.")
	flag.IntVar(&defaultConfig.BufferSize, "line-buffer", defaultConfig.BufferSize, "Capacity of the prompt line buffer.")
	flag.StringVar(&defaultConfig.LaunchCommand, "launch", defaultConfig.LaunchCommand, "Command line launching the companion process.")
	flag.BoolVar(&defaultConfig.TrimSpace, "trim-space", defaultConfig.TrimSpace, "Ignore trailing whitespace and control bytes when matching prompts.")
	flag.DurationVar(&defaultConfig.Timing.Settle, "settle", defaultConfig.Timing.Settle, "Delay before opening the serial port.")
	flag.DurationVar(&defaultConfig.Timing.Quiet, "quiet", defaultConfig.Timing.Quiet, "Silence required to finish draining input.")
	flag.DurationVar(&defaultConfig.Timing.AfterLaunch, "launch-wait", defaultConfig.Timing.AfterLaunch, "Delay after the launch command.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// MatchMode returns the configured prompt match mode.
func (c *Config) MatchMode() MatchMode {
	if c.TrimSpace {
		return MatchTrimSpace
	}
	return MatchExact
}

// NewDevice creates the serial device.
func (c *Config) NewDevice() *serial.Device {
	return serial.NewDevice(c.Device)
}

// NewHandshake creates a Handshake over port using the config.
func (c *Config) NewHandshake(port serial.Port) *Handshake {
	h := NewHandshake(port)
	if c.Baud > 0 {
		h.Baud = c.Baud
	}
	if c.Rounds > 0 {
		h.Rounds = c.Rounds
	}
	if c.BufferSize > 0 {
		h.BufferSize = c.BufferSize
	}
	if c.LaunchCommand != "" {
		h.LaunchCommand = c.LaunchCommand
		if !strings.HasSuffix(h.LaunchCommand, "\n") {
			h.LaunchCommand += "\n"
		}
	}
	h.MatchMode = c.MatchMode()
	h.Timing = c.Timing
	return h
}

// NewBridge creates a Bridge over port using the config.
func (c *Config) NewBridge(port serial.Port) *Bridge {
	b := New(port)
	b.Handshake = c.NewHandshake(port)
	return b
}
