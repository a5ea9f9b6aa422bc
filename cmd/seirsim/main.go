package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/san-kum/seirsim/internal/chart"
	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/experiment"
	"github.com/san-kum/seirsim/internal/export"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	configFile string
	preset     string
	verbose    bool

	model  string
	solver string

	n, beta, gamma, sigma float64
	s0, e0, i0, r0        float64
	t0, t1                float64
	points                int

	rtol, atol float64
	maxSteps   int
	dt         float64

	format string
	out    string
}

type app struct {
	opts options
	log  *zap.Logger
}

func main() {
	a := &app{log: zap.NewNop()}
	root := a.rootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		a.log.Error("seirsim failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		a.log.Sync()
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	o := &a.opts

	rootCmd := &cobra.Command{
		Use:           "seirsim",
		Short:         "deterministic SEIR epidemic simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.log.Sync()
		},
		RunE: a.runScenario,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "scenario file (yaml)")
	pf.StringVar(&o.preset, "preset", "", "start from a named preset")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&o.model, "model", config.DefaultModel, "model (seir|sir)")
	pf.StringVar(&o.solver, "solver", config.DefaultSolver, "solver (rk45|rk4|euler)")
	pf.Float64Var(&o.n, "n", config.DefaultN, "total population")
	pf.Float64Var(&o.beta, "beta", config.DefaultBeta, "transmission rate")
	pf.Float64Var(&o.gamma, "gamma", config.DefaultGamma, "recovery rate")
	pf.Float64Var(&o.sigma, "sigma", config.DefaultSigma, "incubation rate")
	pf.Float64Var(&o.s0, "s0", config.DefaultN-1, "initial susceptible")
	pf.Float64Var(&o.e0, "e0", 0, "initial exposed")
	pf.Float64Var(&o.i0, "i0", 1, "initial infectious")
	pf.Float64Var(&o.r0, "r0", 0, "initial recovered")
	pf.Float64Var(&o.t0, "t0", config.DefaultT0, "start time")
	pf.Float64Var(&o.t1, "t1", config.DefaultT1, "end time")
	pf.IntVar(&o.points, "points", config.DefaultPoints, "output grid points")
	pf.Float64Var(&o.rtol, "rtol", config.DefaultRelTol, "relative tolerance (rk45)")
	pf.Float64Var(&o.atol, "atol", config.DefaultAbsTol, "absolute tolerance (rk45)")
	pf.IntVar(&o.maxSteps, "max-steps", config.DefaultMaxSteps, "step budget")
	pf.Float64Var(&o.dt, "dt", config.DefaultDt, "internal step (rk4, euler)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the scenario and chart it in the terminal",
		Args:  cobra.NoArgs,
		RunE:  a.runScenario,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "run the scenario and write csv, json or svg",
		Args:  cobra.NoArgs,
		RunE:  a.exportScenario,
	}
	exportCmd.Flags().StringVarP(&o.format, "format", "f", "csv", "output format (csv|json|svg)")
	exportCmd.Flags().StringVarP(&o.out, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(out, "  %-14s %-4s R0=%-7.3f N=%g\n", name, p.Model, p.EpidemicParams().R0(), p.Params.N)
			}
		},
	}

	rootCmd.AddCommand(runCmd, exportCmd, presetsCmd)
	return rootCmd
}

func (a *app) setupLogger() error {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if a.opts.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log
	return nil
}

// resolveConfig layers defaults, preset, config file and changed flags.
func (a *app) resolveConfig(flags *pflag.FlagSet) (*config.Config, error) {
	o := a.opts
	cfg := config.DefaultConfig()

	if o.preset != "" {
		cfg = config.GetPreset(o.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", o.preset, config.ListPresets())
		}
	}

	if o.configFile != "" {
		loaded, err := config.LoadOver(cfg, o.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("model", func() { cfg.Model = o.model })
	set("solver", func() { cfg.Solver = o.solver })
	set("n", func() { cfg.Params.N = o.n })
	set("beta", func() { cfg.Params.Beta = o.beta })
	set("gamma", func() { cfg.Params.Gamma = o.gamma })
	set("sigma", func() { cfg.Params.Sigma = o.sigma })
	set("s0", func() { cfg.InitState.S = o.s0 })
	set("e0", func() { cfg.InitState.E = o.e0 })
	set("i0", func() { cfg.InitState.I = o.i0 })
	set("r0", func() { cfg.InitState.R = o.r0 })
	set("t0", func() { cfg.T0 = o.t0 })
	set("t1", func() { cfg.T1 = o.t1 })
	set("points", func() { cfg.Points = o.points })
	set("rtol", func() { cfg.Tolerance.RelTol = o.rtol })
	set("atol", func() { cfg.Tolerance.AbsTol = o.atol })
	set("max-steps", func() { cfg.Tolerance.MaxSteps = o.maxSteps })
	set("dt", func() { cfg.Tolerance.Dt = o.dt })

	return cfg, nil
}

func (a *app) simulate(cmd *cobra.Command) (*experiment.Result, error) {
	cfg, err := a.resolveConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}

	exp := experiment.New(cfg, a.log)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return nil, err
	}

	res, err := exp.Run(cmd.Context())
	if err != nil {
		return nil, err
	}
	a.log.Debug("run complete",
		zap.String("id", res.ID),
		zap.Int("steps", res.Solution.Stats.Steps),
		zap.Int("rejected", res.Solution.Stats.Rejected),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func legends(res *experiment.Result) []string {
	compartments := res.Model.Compartments()
	out := make([]string, len(compartments))
	for i, c := range compartments {
		out[i] = c.Legend()
	}
	return out
}

func (a *app) runScenario(cmd *cobra.Command, args []string) error {
	res, err := a.simulate(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, chart.Terminal(res.Solution, chart.TerminalOptions{
		Height:  15,
		Width:   80,
		Caption: res.Model.Name() + " Model",
		Legends: legends(res),
	}))
	fmt.Fprintln(out)
	fmt.Fprintln(out, chart.Summary(res))
	return nil
}

func (a *app) exportScenario(cmd *cobra.Command, args []string) error {
	var write func(*experiment.Result, io.Writer) error

	switch strings.ToLower(a.opts.format) {
	case "csv":
		write = func(res *experiment.Result, w io.Writer) error {
			return export.WriteCSV(w, res.Solution)
		}
	case "json":
		write = func(res *experiment.Result, w io.Writer) error {
			return export.WriteJSON(w, res)
		}
	case "svg":
		write = func(res *experiment.Result, w io.Writer) error {
			opts := chart.DefaultSVGOptions()
			opts.Title = res.Model.Name() + " Model"
			opts.Legends = legends(res)
			svg := chart.SVG(res.Solution, opts)
			if svg == "" {
				return fmt.Errorf("not enough points to draw")
			}
			_, err := io.WriteString(w, svg)
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s (csv|json|svg)", a.opts.format)
	}

	res, err := a.simulate(cmd)
	if err != nil {
		return err
	}

	if a.opts.out == "" {
		return write(res, cmd.OutOrStdout())
	}
	if err := export.ToFile(a.opts.out, func(w io.Writer) error { return write(res, w) }); err != nil {
		return err
	}
	a.log.Info("exported", zap.String("id", res.ID), zap.String("format", a.opts.format), zap.String("path", a.opts.out))
	return nil
}
