package integrators

import "go.uber.org/zap"

const (
	DefaultRelTol   = 1e-6
	DefaultAbsTol   = 1e-9
	DefaultMaxSteps = 100000
)

// Options bounds the work a solver may do. Zero values select defaults.
type Options struct {
	RelTol      float64
	AbsTol      float64
	InitialStep float64
	MinStep     float64
	MaxStep     float64
	MaxSteps    int
}

func DefaultOptions() Options {
	return Options{
		RelTol:   DefaultRelTol,
		AbsTol:   DefaultAbsTol,
		MaxSteps: DefaultMaxSteps,
	}
}

type Option func(*settings)

type settings struct {
	opts Options
	log  *zap.Logger
}

func newSettings(opts []Option) settings {
	s := settings{opts: DefaultOptions(), log: zap.NewNop()}
	for _, o := range opts {
		o(&s)
	}
	if s.opts.RelTol <= 0 {
		s.opts.RelTol = DefaultRelTol
	}
	if s.opts.AbsTol <= 0 {
		s.opts.AbsTol = DefaultAbsTol
	}
	if s.opts.MaxSteps <= 0 {
		s.opts.MaxSteps = DefaultMaxSteps
	}
	return s
}

func WithOptions(o Options) Option {
	return func(s *settings) { s.opts = o }
}

func WithTolerance(rtol, atol float64) Option {
	return func(s *settings) {
		s.opts.RelTol = rtol
		s.opts.AbsTol = atol
	}
}

func WithMaxSteps(n int) Option {
	return func(s *settings) { s.opts.MaxSteps = n }
}

func WithStepBounds(minStep, maxStep float64) Option {
	return func(s *settings) {
		s.opts.MinStep = minStep
		s.opts.MaxStep = maxStep
	}
}

func WithInitialStep(h float64) Option {
	return func(s *settings) { s.opts.InitialStep = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}
