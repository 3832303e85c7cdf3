package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.05
	DefaultDuration = 5.0
	DefaultHorizon  = 20
	DefaultKp       = 10.0
	DefaultKi       = 0.1
	DefaultKd       = 5.0
)

// Config describes one closed-loop run: which plant, which
// controller, the transcription scheme and how to solve it. Empty
// InitState/Target fall back to the model's stock scenario.
type Config struct {
	Model      string `yaml:"model"`
	Mode       string `yaml:"mode"`
	Controller string `yaml:"controller"`

	Horizon  int     `yaml:"horizon"`
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`

	InitState []float64 `yaml:"init_state,omitempty"`
	Target    []float64 `yaml:"target,omitempty"`

	// Plant selects the simulator-side stepper: empty tracks Mode,
	// "rk45" simulates the plant more accurately than the controller
	// models it.
	Plant string `yaml:"plant,omitempty"`

	ValidateState bool `yaml:"validate_state"`

	Solver SolverConfig `yaml:"solver"`
	PID    PIDConfig    `yaml:"pid"`
}

// SolverConfig names a backend and its tuning: a preset resolved by
// the backend, with Options overriding individual keys on top.
type SolverConfig struct {
	Backend string         `yaml:"backend"`
	Preset  string         `yaml:"preset"`
	Options map[string]any `yaml:"options,omitempty"`
}

type PIDConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:         "pendulum",
		Mode:          "rk4",
		Controller:    "mpc",
		Horizon:       DefaultHorizon,
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		ValidateState: true,
		Solver: SolverConfig{
			Backend: "slsqp",
			Preset:  "default",
		},
		PID: PIDConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
	}
}

// Clone deep-copies the config so callers can overlay flags without
// touching shared presets.
func (c *Config) Clone() *Config {
	out := *c
	out.InitState = append([]float64(nil), c.InitState...)
	out.Target = append([]float64(nil), c.Target...)
	if c.Solver.Options != nil {
		opts := make(map[string]any, len(c.Solver.Options))
		for k, v := range c.Solver.Options {
			opts[k] = v
		}
		out.Solver.Options = opts
	}
	return &out
}

// Load reads a YAML config, overlaying it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
