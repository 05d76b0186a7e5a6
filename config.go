package seeker

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Mode selects the read pattern of a run.
type Mode int

const (
	Random Mode = iota
	Sequential
)

func (m Mode) String() string {
	if m == Sequential {
		return "sequential"
	}
	return "random"
}

const (
	DefaultLimit           = 30 * time.Second
	DefaultWindow          = 1000
	DefaultRandomBlock     = 4096
	DefaultSequentialBlock = 1 << 20

	// MinLimit is the exclusive lower bound on Config.Limit.
	MinLimit = 100 * time.Millisecond
)

const (
	directAlign         = 4096
	directBlockMultiple = 512
)

// Config describes one measurement run. It is shared read-only by every
// worker of the run.
type Config struct {
	Device      string
	BlockSize   int64
	Mode        Mode
	Limit       time.Duration
	Concurrency int
	DeviceSize  int64

	// Window is the number of operations per latency sample.
	Window int64
	// Direct opens the device with O_DIRECT.
	Direct bool
}

// Complete fills in defaults, probes the device size when it is unknown and
// validates the result.
func (c Config) Complete() (Config, error) {
	if c.Limit == 0 {
		c.Limit = DefaultLimit
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.BlockSize == 0 {
		if c.Mode == Sequential {
			c.BlockSize = DefaultSequentialBlock
		} else {
			c.BlockSize = DefaultRandomBlock
		}
	}
	if c.DeviceSize == 0 && c.Device != "" {
		size, err := DeviceSize(c.Device)
		if err != nil {
			return c, err
		}
		c.DeviceSize = size
	}
	return c, c.Validate()
}

// Validate reports the first problem found in c as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.Device == "":
		return &ConfigError{Field: "device", Reason: "required"}
	case c.Limit <= MinLimit:
		return &ConfigError{Field: "limit", Reason: fmt.Sprintf("%v must exceed %v", c.Limit, MinLimit)}
	case c.BlockSize <= 0:
		return &ConfigError{Field: "blocksize", Reason: fmt.Sprintf("%d must be positive", c.BlockSize)}
	case c.Concurrency < 1:
		return &ConfigError{Field: "concurrency", Reason: fmt.Sprintf("%d must be at least 1", c.Concurrency)}
	case c.Window < 1:
		return &ConfigError{Field: "window", Reason: fmt.Sprintf("%d must be at least 1", c.Window)}
	case c.Mode == Random && c.DeviceSize <= c.BlockSize:
		return &ConfigError{Field: "device size", Reason: fmt.Sprintf("%d bytes leaves no room for random %d byte reads", c.DeviceSize, c.BlockSize)}
	case c.Mode == Sequential && c.DeviceSize <= 0:
		return &ConfigError{Field: "device size", Reason: fmt.Sprintf("%d bytes is empty", c.DeviceSize)}
	case c.Direct && c.BlockSize%directBlockMultiple != 0:
		return &ConfigError{Field: "blocksize", Reason: fmt.Sprintf("%d is not a multiple of %d required by direct I/O", c.BlockSize, directBlockMultiple)}
	}
	return nil
}

type fileConfig struct {
	Device      string  `yaml:"device"`
	Limit       float64 `yaml:"limit"`
	BlockSize   string  `yaml:"blocksize"`
	Concurrency int     `yaml:"concurrency"`
	Sequential  bool    `yaml:"sequential"`
	Window      int64   `yaml:"window"`
	Direct      bool    `yaml:"direct"`
}

// LoadFile reads a YAML run description. Fields left out stay zero so that
// Complete can default them.
func LoadFile(pn string) (Config, error) {
	var fc fileConfig
	file, err := os.Open(pn)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()
	d := yaml.NewDecoder(file)
	d.KnownFields(true)
	if err := d.Decode(&fc); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", pn, err)
	}

	cfg := Config{
		Device:      fc.Device,
		Limit:       time.Duration(fc.Limit * float64(time.Second)),
		Concurrency: fc.Concurrency,
		Window:      fc.Window,
		Direct:      fc.Direct,
	}
	if fc.Sequential {
		cfg.Mode = Sequential
	}
	if fc.BlockSize != "" {
		bs, err := ParseBlockSize(fc.BlockSize)
		if err != nil {
			return Config{}, err
		}
		cfg.BlockSize = bs
	}
	return cfg, nil
}

// ParseBlockSize accepts plain byte counts as well as human sizes such as
// "4KiB" or "1MiB".
func ParseBlockSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, &ConfigError{Field: "blocksize", Reason: err.Error()}
	}
	return int64(n), nil
}
