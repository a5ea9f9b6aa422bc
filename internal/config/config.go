package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel  = "seir"
	DefaultSolver = "rk45"

	DefaultN     = 100.0
	DefaultBeta  = 1.5
	DefaultGamma = 0.1
	DefaultSigma = 1.0 / 3.0

	DefaultT0     = 0.0
	DefaultT1     = 160.0
	DefaultPoints = 1000

	DefaultRelTol   = 1e-6
	DefaultAbsTol   = 1e-9
	DefaultMaxSteps = 100000
	DefaultDt       = 0.01
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Model     string          `yaml:"model"`
	Solver    string          `yaml:"solver"`
	Params    ParamsConfig    `yaml:"params"`
	InitState InitStateConfig `yaml:"init_state"`
	T0        float64         `yaml:"t0"`
	T1        float64         `yaml:"t1"`
	Points    int             `yaml:"points"`
	Tolerance ToleranceConfig `yaml:"tolerance"`
}

type ParamsConfig struct {
	N     float64 `yaml:"n"`
	Beta  float64 `yaml:"beta"`
	Gamma float64 `yaml:"gamma"`
	Sigma float64 `yaml:"sigma"`
}

type InitStateConfig struct {
	S float64 `yaml:"s"`
	E float64 `yaml:"e"`
	I float64 `yaml:"i"`
	R float64 `yaml:"r"`
}

type ToleranceConfig struct {
	RelTol   float64 `yaml:"rtol"`
	AbsTol   float64 `yaml:"atol"`
	MaxSteps int     `yaml:"max_steps"`
	Dt       float64 `yaml:"dt"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:  DefaultModel,
		Solver: DefaultSolver,
		Params: ParamsConfig{
			N:     DefaultN,
			Beta:  DefaultBeta,
			Gamma: DefaultGamma,
			Sigma: DefaultSigma,
		},
		InitState: InitStateConfig{
			S: DefaultN - 1,
			I: 1,
		},
		T0:     DefaultT0,
		T1:     DefaultT1,
		Points: DefaultPoints,
		Tolerance: ToleranceConfig{
			RelTol:   DefaultRelTol,
			AbsTol:   DefaultAbsTol,
			MaxSteps: DefaultMaxSteps,
			Dt:       DefaultDt,
		},
	}
}

// Load reads a yaml scenario on top of the defaults.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a yaml scenario on top of a copy of base. Keys absent from
// the file keep the base values.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) EpidemicParams() epidemic.Params {
	return epidemic.Params{
		N:     c.Params.N,
		Beta:  c.Params.Beta,
		Gamma: c.Params.Gamma,
		Sigma: c.Params.Sigma,
	}
}

// GetInitState orders the configured compartments for the model.
func (c *Config) GetInitState() []float64 {
	switch strings.ToLower(c.Model) {
	case "sir":
		return []float64{c.InitState.S, c.InitState.I, c.InitState.R}
	default:
		return []float64{c.InitState.S, c.InitState.E, c.InitState.I, c.InitState.R}
	}
}

func (c *Config) Span() dynamo.Span {
	return dynamo.Span{Start: c.T0, End: c.T1}
}

func (c *Config) Grid() []float64 {
	return dynamo.Linspace(c.T0, c.T1, c.Points)
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Model) {
	case "seir":
	case "sir":
		if c.InitState.E != 0 {
			return fmt.Errorf("%w: sir has no exposed compartment, got e=%g", ErrInvalidConfig, c.InitState.E)
		}
	default:
		return fmt.Errorf("%w: unknown model %q", ErrInvalidConfig, c.Model)
	}
	if err := c.EpidemicParams().Validate(); err != nil {
		return err
	}
	if err := dynamo.ValidateSpan(c.Span()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Points < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidConfig, c.Points)
	}
	if c.Tolerance.RelTol < 0 || c.Tolerance.AbsTol < 0 {
		return fmt.Errorf("%w: tolerances must be non-negative", ErrInvalidConfig)
	}
	if c.Tolerance.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps must be non-negative", ErrInvalidConfig)
	}
	if c.Tolerance.Dt < 0 {
		return fmt.Errorf("%w: dt must be non-negative", ErrInvalidConfig)
	}
	return nil
}
