package blewatch

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// MaxEventBufferSize caps the event queue to guard against accidental
// misconfiguration.
const MaxEventBufferSize uint32 = 1 << 20

// Config holds watcher configuration.
type Config struct {
	// EventBufferSize is the number of received advertisements that may
	// wait for the callback before the oldest are dropped.
	EventBufferSize uint32 `yaml:"event_buffer_size" default:"256"`

	// ScanningMode is "active" or "passive".
	ScanningMode string `yaml:"scanning_mode" default:"active"`

	AllowExtendedAdvertisements bool `yaml:"allow_extended_advertisements" default:"true"`

	// AdapterID selects the BlueZ adapter (such as "hci1") on Linux. Empty
	// means the default adapter.
	AdapterID string `yaml:"adapter_id"`

	// PoweredOnTimeout bounds how long NewWatcher waits for CoreBluetooth to
	// report its state on macOS.
	PoweredOnTimeout time.Duration `yaml:"powered_on_timeout" default:"5s"`

	LogLevel string `yaml:"log_level" default:"info"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	c := &Config{}
	defaults.SetDefaults(c)
	return c
}

// LoadConfig reads a YAML configuration file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the configuration for values the watcher cannot use.
func (c *Config) Validate() error {
	if c.EventBufferSize == 0 {
		return fmt.Errorf("event buffer size must be > 0")
	}
	if c.EventBufferSize > MaxEventBufferSize {
		return fmt.Errorf("event buffer size %d exceeds maximum %d", c.EventBufferSize, MaxEventBufferSize)
	}
	if _, err := ParseScanningMode(c.ScanningMode); err != nil {
		return err
	}
	if c.PoweredOnTimeout <= 0 {
		return fmt.Errorf("powered on timeout must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// NewLogger creates a logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger
}

// Option configures a Watcher.
type Option func(*options)

type options struct {
	config *Config
	logger logrus.FieldLogger
}

// WithConfig replaces the default configuration.
func WithConfig(c *Config) Option {
	return func(o *options) {
		if c != nil {
			cp := *c
			o.config = &cp
		}
	}
}

// WithLogger sets the logger used for diagnostics. By default a logger built
// from the configuration is used.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventBufferSize overrides Config.EventBufferSize.
func WithEventBufferSize(n uint32) Option {
	return func(o *options) {
		o.config.EventBufferSize = n
	}
}

// WithScanningMode overrides Config.ScanningMode.
func WithScanningMode(mode ScanningMode) Option {
	return func(o *options) {
		o.config.ScanningMode = mode.String()
	}
}

func buildOptions(opts []Option) (*options, error) {
	o := &options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	if o.logger == nil {
		o.logger = o.config.NewLogger()
	}
	return o, nil
}
