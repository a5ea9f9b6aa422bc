package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/metrics"
	"go.uber.org/zap"
)

type Experiment struct {
	cfg     *config.Config
	model   *epidemic.Model
	solver  dynamo.Solver
	metrics []dynamo.Metric
	log     *zap.Logger
}

// Result is everything one run produced.
type Result struct {
	ID        string
	Config    *config.Config
	Model     *epidemic.Model
	Solution  *dynamo.Solution
	Metrics   map[string]float64
	StartedAt time.Time
	Elapsed   time.Duration
}

func New(cfg *config.Config, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, log: log}
}

// Setup validates the configuration and resolves the model and solver.
func (e *Experiment) Setup(r *Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	model, err := r.GetModel(e.cfg.Model, e.cfg.EpidemicParams())
	if err != nil {
		return err
	}
	if err := model.ValidateInitial(e.cfg.GetInitState()); err != nil {
		return err
	}

	solver, err := r.GetSolver(e.cfg.Solver, e.cfg.Tolerance, e.log)
	if err != nil {
		return err
	}

	e.model = model
	e.solver = solver
	e.metrics = r.DefaultMetrics(model)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	x0 := dynamo.State(e.cfg.GetInitState())
	e.log.Debug("starting integration",
		zap.String("model", e.model.Name()),
		zap.String("solver", e.cfg.Solver),
		zap.Stringer("params", e.model.Params()),
		zap.Float64s("x0", x0),
		zap.Float64("t0", e.cfg.T0),
		zap.Float64("t1", e.cfg.T1),
		zap.Int("points", e.cfg.Points))

	start := time.Now()
	sol, err := e.solver.Solve(ctx, e.model, e.cfg.Span(), x0, e.cfg.Grid())
	if err != nil {
		return nil, fmt.Errorf("integrate %s: %w", e.model.Name(), err)
	}

	return &Result{
		ID:        uuid.NewString(),
		Config:    e.cfg,
		Model:     e.model,
		Solution:  sol,
		Metrics:   metrics.Evaluate(sol, e.metrics...),
		StartedAt: start,
		Elapsed:   time.Since(start),
	}, nil
}

// Model returns the resolved model, nil before Setup.
func (e *Experiment) Model() *epidemic.Model {
	return e.model
}
