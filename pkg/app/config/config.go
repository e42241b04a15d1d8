package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"

	"radrx/pkg/blaster"
)

var (
	ErrInvalidTerminator = errors.New("invalid terminator")
	ErrInvalidLogLevel   = errors.New("invalid log level")
)

// Config holds the application configuration. Attention!
// To make it possible to overwrite fields with the -overwrite command
// line option each of the struct fields must be in the format
// first letter uppercase -> followed by CamelCase as in the config file.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Gpio        int             `yaml:"gpio"`
	Chip        string          `yaml:"chip"`
	Terminator  string          `yaml:"terminator"`
	Protocols   []string        `yaml:"protocols"`
	Codecs      []blaster.Codec `yaml:"-"`
	CounterBits uint            `yaml:"counterbits"`
	Emulate     bool            `yaml:"emulate"`
	Tx          TxConfig        `yaml:"tx"`
	Flag        FlagConfig      `yaml:"-"`
	Log         LogConfig       `yaml:"log"`
	Webserver   WebserverConfig `yaml:"webserver"`
	MQTT        MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Version    bool
	LogLevel   string
	ConfigFile string
}

// TxConfig defines the struct of the transmitter configuration.
// Protocol, team and weapon are the default shot of the blast command and of the emulated blaster.
type TxConfig struct {
	Gpio        int           `yaml:"gpio"`
	Protocol    string        `yaml:"protocol"`
	Team        string        `yaml:"team"`
	Weapon      string        `yaml:"weapon"`
	Interval    time.Duration `yaml:"-"`
	IntervalInt int           `yaml:"interval"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	ClientID   string `yaml:"clientid"`
	Topic      string `yaml:"topic"`
}

// LogConfig defines the struct of the debug configuration and configuration file
type LogConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Gpio:        17,
		Chip:        "gpiochip0",
		Terminator:  "pullup",
		// With rad and dynasty enabled a red shotgun dynasty message is received as rad
		// if the decode pass of its 37th sample completes before the next edge.
		Protocols:   blaster.Names(),
		CounterBits: 32,
		Flag:        FlagConfig{},
		Tx: TxConfig{
			Gpio:     18,
			Protocol: "dynasty",
			Team:     "red",
			Weapon:   "pistol",
		},
		Log: LogConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
				"metrics": true,
			},
		},
		MQTT: MQTTConfig{
			ClientID: "radrx",
			Topic:    "radrx/hit",
		},
	}
}

// LoadConfig reads the configuration file, an empty file name keeps the defaults.
func (c *Config) LoadConfig() error {
	if c.Flag.ConfigFile != "" {
		if err := c.readConfigFile(); err != nil {
			return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
		}
	}

	if c.Flag.LogLevel != "" {
		c.Log.FlagString = c.Flag.LogLevel
	}
	if err := c.setLogConfig(); err != nil {
		return fmt.Errorf("unable to set log config %q: %w", c.Log.FileString, err)
	}

	return c.validate()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) validate() (err error) {
	if c.Codecs, err = blaster.Codecs(c.Protocols...); err != nil {
		return fmt.Errorf("protocols %v: %w", c.Protocols, err)
	}

	switch c.Terminator {
	case "pullup", "pulldown", "none":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTerminator, c.Terminator)
	}

	if c.CounterBits == 0 || c.CounterBits > 32 {
		return fmt.Errorf("counterbits %d out of range 1..32", c.CounterBits)
	}

	c.Tx.Interval = time.Duration(c.Tx.IntervalInt) * time.Second
	return nil
}

func (c *Config) setLogConfig() (err error) {
	// defines Log section of global.Config
	switch c.Log.FlagString {
	case "trace", "full":
		c.Log.Flag = debug.Full
	case "debug":
		c.Log.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Log.Flag = debug.Standard
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.FlagString)
	}

	switch c.Log.FileString {
	case "stderr":
		c.Log.File = os.Stderr
	case "stdout":
		c.Log.File = os.Stdout
	default:
		if c.Log.File, err = os.OpenFile(c.Log.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
