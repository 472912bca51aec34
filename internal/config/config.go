// Package config resolves the link configuration from the environment and an
// optional YAML file. The environment is the primary source (the instrument
// host sets PLC_* variables); a file given on the command line overrides it.
// Simulation is the default: driving the physical controller requires opting
// out explicitly.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config describes how to reach the controller.
type Config struct {
	IP       string // controller address (ISO-on-TCP, port 102)
	Rack     int
	Slot     int
	Simulate bool // use the in-memory simulator instead of the physical link
	SimDebug bool // trace every simulator access
}

// Default returns the safety-first defaults: simulator on, standard S7-1200
// rack/slot addressing.
func Default() Config {
	return Config{
		IP:       "192.168.0.1",
		Rack:     0,
		Slot:     1,
		Simulate: true,
	}
}

// FromEnv builds a Config from the PLC_* environment variables, starting
// from the defaults. Unset variables keep their default.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("PLC_IP"); v != "" {
		cfg.IP = v
	}
	if v := os.Getenv("PLC_RACK"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("PLC_RACK: %w", err)
		}
		cfg.Rack = n
	}
	if v := os.Getenv("PLC_SLOT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("PLC_SLOT: %w", err)
		}
		cfg.Slot = n
	}
	if v := os.Getenv("PLC_SIM"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("PLC_SIM: %w", err)
		}
		cfg.Simulate = b
	}
	if v := os.Getenv("PLC_SIM_DEBUG"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("PLC_SIM_DEBUG: %w", err)
		}
		cfg.SimDebug = b
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fileConfig mirrors Config with optional fields so a file only overrides
// what it mentions.
type fileConfig struct {
	IP       *string `yaml:"ip"`
	Rack     *int    `yaml:"rack"`
	Slot     *int    `yaml:"slot"`
	Simulate *bool   `yaml:"simulate"`
	SimDebug *bool   `yaml:"sim_debug"`
}

// ApplyFile overlays a YAML config file onto cfg.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.IP != nil {
		c.IP = *fc.IP
	}
	if fc.Rack != nil {
		c.Rack = *fc.Rack
	}
	if fc.Slot != nil {
		c.Slot = *fc.Slot
	}
	if fc.Simulate != nil {
		c.Simulate = *fc.Simulate
	}
	if fc.SimDebug != nil {
		c.SimDebug = *fc.SimDebug
	}
	return c.Validate()
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if !c.Simulate && c.IP == "" {
		return fmt.Errorf("controller address required when simulation is off")
	}
	if c.Rack < 0 || c.Slot < 0 {
		return fmt.Errorf("rack and slot must be non-negative (rack %d, slot %d)", c.Rack, c.Slot)
	}
	return nil
}

// parseBool accepts the spellings PLC tooling conventionally uses (0/1,
// true/false, on/off).
func parseBool(s string) (bool, error) {
	switch s {
	case "1", "true", "TRUE", "True", "on", "yes":
		return true, nil
	case "0", "false", "FALSE", "False", "off", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}
