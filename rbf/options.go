package rbf

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"
)

// Option configures an RBFNet at construction time.
type Option func(*RBFNet)

// WithNumCenters sets the number of basis function centers (default 50).
func WithNumCenters(k int) Option {
	return func(net *RBFNet) {
		net.numCenters = k
	}
}

// WithRadius fixes the kernel radius. When the radius is left unset,
// Fit searches for it with a derivative-free optimizer.
func WithRadius(radius float64) Option {
	return func(net *RBFNet) {
		net.radius = radius
	}
}

// WithKernel sets the radial basis function (default Gaussian).
func WithKernel(k Kernel) Option {
	return func(net *RBFNet) {
		net.kernel = k
	}
}

// WithMeasure selects the error measure minimized during the radius
// search by name (default metrics.RMS). The name is resolved against
// the metrics package registry when the search runs.
func WithMeasure(name string) Option {
	return func(net *RBFNet) {
		net.measureName = name
	}
}

// WithKeepAspect preserves the relative scale of the input axes during
// normalization: a single shared scale is used instead of one per axis.
func WithKeepAspect(keep bool) Option {
	return func(net *RBFNet) {
		net.keepAspect = keep
	}
}

// WithRandomState seeds the center selection for reproducible runs.
// A negative value (the default) uses a time-based seed.
func WithRandomState(seed int64) Option {
	return func(net *RBFNet) {
		net.randomState = seed
	}
}

// WithVerbose enables per-iteration logging of the radius search.
func WithVerbose(verbose bool) Option {
	return func(net *RBFNet) {
		net.verbose = verbose
	}
}

// WithLogger sets the logger used for verbose progress output.
func WithLogger(logger zerolog.Logger) Option {
	return func(net *RBFNet) {
		net.logger = logger
	}
}

// WithOptimizerTol sets the absolute convergence tolerance of the
// radius search (default 1e-6).
func WithOptimizerTol(tol float64) Option {
	return func(net *RBFNet) {
		net.optTol = tol
	}
}

// WithOptimizerMaxIter caps the number of major iterations of the
// radius search (default 200).
func WithOptimizerMaxIter(n int) Option {
	return func(net *RBFNet) {
		net.optMaxIter = n
	}
}

// WithOptimizerMethod sets the gonum optimize method driving the radius
// search (default Nelder-Mead). The objective is evaluated by refitting
// the weights at each trial radius, so the method must not require
// gradients.
func WithOptimizerMethod(method optimize.Method) Option {
	return func(net *RBFNet) {
		net.optMethod = method
	}
}
