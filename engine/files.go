package engine

import (
	"shape-synth/internal/config"
	"shape-synth/internal/manipulate"
)

// Plan is a YAML manipulation plan.
type Plan = manipulate.Plan

// Config is the engine configuration.
type Config = config.Config

// LoadPlan reads a manipulation plan file.
func LoadPlan(file string) (*Plan, error) {
	return manipulate.LoadPlan(file)
}

// ParsePlan parses a manipulation plan.
func ParsePlan(data []byte) (*Plan, error) {
	return manipulate.ParsePlan(data)
}

// LoadConfig reads a configuration file.
func LoadConfig(file string) (*Config, error) {
	return config.LoadFile(file)
}

// ParseConfig parses a configuration.
func ParseConfig(data []byte) (*Config, error) {
	return config.Parse(data)
}
