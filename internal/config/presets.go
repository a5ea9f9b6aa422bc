package config

import "sort"

// Presets are named scenarios. ferreira2021 is the reference outbreak.
var Presets = map[string]*Config{
	"ferreira2021": DefaultConfig(),
	"influenza": {
		Model: "seir", Solver: "rk45", T1: 180, Points: 1000,
		Params:    ParamsConfig{N: 10000, Beta: 0.375, Gamma: 0.25, Sigma: 0.5},
		InitState: InitStateConfig{S: 9990, I: 10},
		Tolerance: defaultTolerance(),
	},
	"measles": {
		Model: "seir", Solver: "rk45", T1: 200, Points: 1000,
		Params:    ParamsConfig{N: 100000, Beta: 1.875, Gamma: 1.0 / 8.0, Sigma: 1.0 / 10.0},
		InitState: InitStateConfig{S: 99999, I: 1},
		Tolerance: defaultTolerance(),
	},
	"covid19": {
		Model: "seir", Solver: "rk45", T1: 365, Points: 1000,
		Params:    ParamsConfig{N: 1000000, Beta: 0.357, Gamma: 1.0 / 7.0, Sigma: 1.0 / 5.2},
		InitState: InitStateConfig{S: 999990, I: 10},
		Tolerance: defaultTolerance(),
	},
	"sir-classic": {
		Model: "sir", Solver: "rk45", T1: 200, Points: 1000,
		Params:    ParamsConfig{N: 1000, Beta: 0.5, Gamma: 0.1},
		InitState: InitStateConfig{S: 999, I: 1},
		Tolerance: defaultTolerance(),
	},
}

func defaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		RelTol:   DefaultRelTol,
		AbsTol:   DefaultAbsTol,
		MaxSteps: DefaultMaxSteps,
		Dt:       DefaultDt,
	}
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
