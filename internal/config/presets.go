package config

import "sort"

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"swing": {
			Model: "pendulum", Mode: "rk4", Controller: "mpc",
			Horizon: 25, Dt: 0.05, Duration: 4.0, ValidateState: true,
			InitState: []float64{1.0472, 0},
			Solver:    SolverConfig{Backend: "slsqp", Preset: "default"},
		},
		"nudge": {
			Model: "pendulum", Mode: "rk4", Controller: "mpc",
			Horizon: 15, Dt: 0.05, Duration: 3.0, ValidateState: true,
			InitState: []float64{0.2, 0},
			Solver:    SolverConfig{Backend: "slsqp", Preset: "fast"},
		},
		"pid": {
			Model: "pendulum", Mode: "rk4", Controller: "pid",
			Dt: 0.01, Duration: 6.0, ValidateState: true,
			InitState: []float64{0.5, 0},
			PID:       PIDConfig{Kp: 8.0, Ki: 0.5, Kd: 2.0},
		},
	},
	"cartpole": {
		"balance": {
			Model: "cartpole", Mode: "rk4", Controller: "mpc",
			Horizon: 30, Dt: 0.04, Duration: 4.0, ValidateState: true,
			InitState: []float64{0, 0, 0.15, 0},
			Solver:    SolverConfig{Backend: "slsqp", Preset: "default"},
		},
		"recover": {
			Model: "cartpole", Mode: "rk4", Controller: "mpc",
			Horizon: 40, Dt: 0.04, Duration: 5.0, ValidateState: true,
			InitState: []float64{0, 0, 0.4, 0},
			Solver:    SolverConfig{Backend: "slsqp", Preset: "precise"},
		},
	},
	"double_integrator": {
		"park": {
			Model: "double_integrator", Mode: "discrete", Controller: "mpc",
			Horizon: 20, Dt: 0.1, Duration: 4.0, ValidateState: true,
			InitState: []float64{-1, 0},
			Solver:    SolverConfig{Backend: "slsqp", Preset: "fast"},
		},
	},
	"drone": {
		"hover": {
			Model: "drone", Mode: "rk4", Controller: "mpc",
			Horizon: 20, Dt: 0.05, Duration: 4.0, ValidateState: true,
			InitState: []float64{0.5, -0.5, 0.2, 0, 0, 0},
			Solver:    SolverConfig{Backend: "slsqp", Preset: "default"},
		},
		"drift": {
			Model: "drone", Mode: "rk4", Controller: "mpc",
			Horizon: 25, Dt: 0.05, Duration: 5.0, ValidateState: true,
			InitState: []float64{1.0, 0.5, 0, -0.3, 0, 0},
			Plant:     "rk45",
			Solver:    SolverConfig{Backend: "slsqp", Preset: "default"},
		},
	},
	"oscillator": {
		"settle": {
			Model: "oscillator", Mode: "heun", Controller: "mpc",
			Horizon: 20, Dt: 0.05, Duration: 5.0, ValidateState: true,
			InitState: []float64{1.5, 0},
			Solver:    SolverConfig{Backend: "slsqp", Preset: "fast"},
		},
		"open": {
			Model: "oscillator", Mode: "rk4", Controller: "none",
			Dt: 0.02, Duration: 5.0, ValidateState: true,
			InitState: []float64{1.5, 0},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models lists the models that carry presets.
func Models() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
