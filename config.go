package feather2d

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Config is the YAML definition of a world (e.g. assets/world.yaml).
type Config struct {
	PixelsPerMeter float64    `yaml:"pixels_per_meter"`
	Gravity        [2]float64 `yaml:"gravity"`
	ExemptSensors  bool       `yaml:"exempt_sensors,omitempty"`
}

// DefaultConfig returns 10 pixels per meter and no gravity
func DefaultConfig() Config {
	return Config{
		PixelsPerMeter: 10,
		Gravity:        [2]float64{0, 0},
	}
}

// ParseConfig decodes a YAML document over DefaultConfig, unknown keys are rejected.
// An empty document gives the default configuration.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML world configuration file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}

func (c Config) Validate() error {
	if !(c.PixelsPerMeter > 0) || math.IsInf(c.PixelsPerMeter, 0) {
		return fmt.Errorf("pixels_per_meter %v: %w", c.PixelsPerMeter, ErrInvalidConfig)
	}
	for _, g := range c.Gravity {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return fmt.Errorf("gravity %v: %w", c.Gravity, ErrInvalidConfig)
		}
	}
	return nil
}

// NewWorldFromConfig creates an empty world from a configuration
func NewWorldFromConfig(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w, err := NewWorld(cfg.PixelsPerMeter, mgl64.Vec2{cfg.Gravity[0], cfg.Gravity[1]})
	if err != nil {
		return nil, err
	}
	w.ExemptSensors = cfg.ExemptSensors

	return w, nil
}
