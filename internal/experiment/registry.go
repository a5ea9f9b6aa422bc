package experiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/integrators"
	"github.com/san-kum/seirsim/internal/metrics"
	"go.uber.org/zap"
)

type ModelFactory func(epidemic.Params) *epidemic.Model

type SolverFactory func(tol config.ToleranceConfig, log *zap.Logger) dynamo.Solver

type Registry struct {
	models  map[string]ModelFactory
	solvers map[string]SolverFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		models:  make(map[string]ModelFactory),
		solvers: make(map[string]SolverFactory),
	}

	r.models["seir"] = epidemic.NewSEIR
	r.models["sir"] = epidemic.NewSIR

	r.solvers["rk45"] = func(tol config.ToleranceConfig, log *zap.Logger) dynamo.Solver {
		return integrators.NewRK45(
			integrators.WithTolerance(tol.RelTol, tol.AbsTol),
			integrators.WithMaxSteps(tol.MaxSteps),
			integrators.WithLogger(log),
		)
	}
	r.solvers["rk4"] = func(tol config.ToleranceConfig, log *zap.Logger) dynamo.Solver {
		return integrators.NewFixedStep(integrators.NewRK4(), fixedDt(tol),
			integrators.WithMaxSteps(tol.MaxSteps),
			integrators.WithLogger(log),
		)
	}
	r.solvers["euler"] = func(tol config.ToleranceConfig, log *zap.Logger) dynamo.Solver {
		return integrators.NewFixedStep(integrators.NewEuler(), fixedDt(tol),
			integrators.WithMaxSteps(tol.MaxSteps),
			integrators.WithLogger(log),
		)
	}

	return r
}

func fixedDt(tol config.ToleranceConfig) float64 {
	if tol.Dt <= 0 {
		return config.DefaultDt
	}
	return tol.Dt
}

func (r *Registry) GetModel(name string, p epidemic.Params) (*epidemic.Model, error) {
	fn, ok := r.models[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(p), nil
}

func (r *Registry) GetSolver(name string, tol config.ToleranceConfig, log *zap.Logger) (dynamo.Solver, error) {
	fn, ok := r.solvers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return fn(tol, log), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListSolvers() []string {
	return sortedKeys(r.solvers)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the diagnostics reported for every run.
func (r *Registry) DefaultMetrics(m *epidemic.Model) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewConservation(m.Params().N),
		metrics.NewMinCompartment(),
	}
	if i := m.Index("I"); i >= 0 {
		ms = append(ms, metrics.NewPeak("I", i), metrics.NewPeakTime("I", i))
	}
	for _, symbol := range []string{"S", "R"} {
		if i := m.Index(symbol); i >= 0 {
			ms = append(ms, metrics.NewFinal(symbol, i))
		}
	}
	return ms
}
