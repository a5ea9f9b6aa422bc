package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
)

func run(t *testing.T, cfg *config.Config) *Result {
	t.Helper()
	exp := New(cfg, nil)
	if err := exp.Setup(NewRegistry()); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res
}

func TestRunReferenceScenario(t *testing.T) {
	res := run(t, config.DefaultConfig())

	if res.ID == "" {
		t.Error("expected run id")
	}
	if res.Solution.Len() != 1000 {
		t.Errorf("expected 1000 points, got %d", res.Solution.Len())
	}

	m := res.Metrics
	if m["conservation_drift"] > 1e-6 {
		t.Errorf("conservation drift too high: %e", m["conservation_drift"])
	}
	if m["min_compartment"] < -1e-4 {
		t.Errorf("negative compartment: %e", m["min_compartment"])
	}
	if math.Abs(m["peak_I"]-52.6) > 0.5 {
		t.Errorf("peak I = %f, expected ~52.6", m["peak_I"])
	}
	if math.Abs(m["peak_time_I"]-14.1) > 0.5 {
		t.Errorf("peak time = %f, expected ~14.1", m["peak_time_I"])
	}
	if m["final_R"] < 99.9 {
		t.Errorf("final R = %f, expected ~100", m["final_R"])
	}
	if m["final_S"] > 0.01 {
		t.Errorf("final S = %f, expected ~0", m["final_S"])
	}
}

func TestRunAllSolvers(t *testing.T) {
	reference := run(t, config.DefaultConfig())

	for _, name := range NewRegistry().ListSolvers() {
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Solver = name
			cfg.Tolerance.Dt = 0.001
			cfg.Tolerance.MaxSteps = 500000
			res := run(t, cfg)

			if res.Metrics["conservation_drift"] > 1e-6 {
				t.Errorf("conservation drift: %e", res.Metrics["conservation_drift"])
			}
			if math.Abs(res.Metrics["peak_I"]-reference.Metrics["peak_I"]) > 0.5 {
				t.Errorf("peak I %f far from rk45 %f", res.Metrics["peak_I"], reference.Metrics["peak_I"])
			}
		})
	}
}

func TestRunSIRPreset(t *testing.T) {
	res := run(t, config.GetPreset("sir-classic"))

	if res.Model.Name() != "SIR" {
		t.Errorf("expected SIR model, got %s", res.Model.Name())
	}
	if len(res.Solution.Labels) != 3 {
		t.Errorf("expected 3 labels, got %v", res.Solution.Labels)
	}
	if _, ok := res.Metrics["final_R"]; !ok {
		t.Error("missing final_R metric")
	}
}

func TestRunDeterministic(t *testing.T) {
	a := run(t, config.DefaultConfig())
	b := run(t, config.DefaultConfig())

	if diff := cmp.Diff(a.Solution, b.Solution); diff != "" {
		t.Errorf("solutions differ:\n%s", diff)
	}
	if diff := cmp.Diff(a.Metrics, b.Metrics); diff != "" {
		t.Errorf("metrics differ:\n%s", diff)
	}
	if a.ID == b.ID {
		t.Error("run ids should be unique")
	}
}

func TestSetupErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"invalid params", func(c *config.Config) { c.Params.N = -1 }, epidemic.ErrInvalidParams},
		{"initial state off population", func(c *config.Config) { c.InitState.S = 10 }, epidemic.ErrInvalidInitialState},
		{"unknown model", func(c *config.Config) { c.Model = "sirs" }, config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			err := New(cfg, nil).Setup(NewRegistry())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	cfg := config.DefaultConfig()
	cfg.Solver = "leapfrog"
	if err := New(cfg, nil).Setup(NewRegistry()); err == nil {
		t.Error("expected unknown solver error")
	}
}

func TestRunWithoutSetup(t *testing.T) {
	if _, err := New(config.DefaultConfig(), nil).Run(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestRunStepBudget(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tolerance.MaxSteps = 3

	exp := New(cfg, nil)
	if err := exp.Setup(NewRegistry()); err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if !errors.Is(err, dynamo.ErrStepBudget) {
		t.Fatalf("expected ErrStepBudget, got %v", err)
	}
	if res != nil {
		t.Error("expected no result on failure")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if diff := cmp.Diff([]string{"seir", "sir"}, r.ListModels()); diff != "" {
		t.Errorf("models: %s", diff)
	}
	if diff := cmp.Diff([]string{"euler", "rk4", "rk45"}, r.ListSolvers()); diff != "" {
		t.Errorf("solvers: %s", diff)
	}
	if _, err := r.GetModel("unknown", epidemic.Params{N: 1}); err == nil {
		t.Error("expected unknown model error")
	}

	m, err := r.GetModel("SEIR", epidemic.Params{N: 1})
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, metric := range r.DefaultMetrics(m) {
		names[metric.Name()] = true
	}
	for _, want := range []string{"conservation_drift", "min_compartment", "peak_I", "peak_time_I", "final_S", "final_R"} {
		if !names[want] {
			t.Errorf("missing default metric %s", want)
		}
	}
}
