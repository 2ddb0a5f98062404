package rbf

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/NLawrenz/localreg/metrics"
	"github.com/NLawrenz/localreg/pkg/errors"
	"github.com/NLawrenz/localreg/pkg/log"
)

// Iteration records one objective evaluation of the radius search.
type Iteration struct {
	// N is the 1-based evaluation number.
	N int

	// Radius is the trial radius in normalized space.
	Radius float64

	// Error is the value of the selected error measure at that radius.
	Error float64
}

// initialRadius is the starting point of the radius search. Inputs are
// standardized before the search, so unit radius is a reasonable scale
// for any dataset.
const initialRadius = 1.0

// FitWeightsAndRadius fits the weights while searching for the kernel
// radius that minimizes the selected error measure on the training data.
//
// The search starts at unit radius and uses a derivative-free Nelder-Mead
// simplex. Every trial radius triggers a full least-squares solve; the
// trace of trials is available through Trace afterwards. When the search
// stops, the weights are refit at the best radius found so the final
// model state corresponds to the optimum rather than the last trial.
//
// ComputeCenters must have been called first.
func (net *RBFNet) FitWeightsAndRadius(X mat.Matrix, y mat.Vector) error {
	if net.Centers_ == nil {
		return errors.NewNotFittedError("RBFNet", "FitWeightsAndRadius")
	}

	measure, err := metrics.ByName(net.measureName)
	if err != nil {
		return err
	}

	yVec := mat.VecDenseCopyOf(y)
	net.trace = net.trace[:0]

	var evalErr error
	objective := func(v []float64) float64 {
		radius := v[0]
		if radius <= 0 {
			// Keep the simplex on the feasible half-line.
			return math.Inf(1)
		}
		if err := net.FitWeights(X, yVec, radius); err != nil {
			evalErr = err
			return math.Inf(1)
		}
		pred, err := net.predictVec(X)
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}
		e, err := measure(yVec, pred)
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}

		net.trace = append(net.trace, Iteration{N: len(net.trace) + 1, Radius: radius, Error: e})
		if net.verbose {
			net.logger.Info().
				Int(log.IterationKey, len(net.trace)).
				Float64(log.RadiusKey, radius).
				Float64(log.ErrorValueKey, e).
				Str(log.MeasureKey, net.measureName).
				Msg("radius search iteration")
		}
		return e
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   net.optTol,
			Iterations: 20,
		},
		MajorIterations: net.optMaxIter,
	}

	method := net.optMethod
	if method == nil {
		method = &optimize.NelderMead{}
	}
	result, err := optimize.Minimize(problem, []float64{initialRadius}, settings, method)
	if err != nil {
		if evalErr != nil {
			return errors.NewModelError("RBFNet.FitWeightsAndRadius", "radius search failed", evalErr)
		}
		return errors.NewModelError("RBFNet.FitWeightsAndRadius", "radius search failed", err)
	}
	if result.Status == optimize.IterationLimit {
		errors.Warn(errors.NewConvergenceWarning("NelderMead", net.optMaxIter,
			"radius search reached the iteration limit"))
	}
	if err := errors.CheckScalar("RBFNet.FitWeightsAndRadius", result.F, len(net.trace)); err != nil {
		return err
	}

	return net.FitWeights(X, yVec, result.X[0])
}

// Trace returns the objective evaluations of the last radius search in
// order. The slice is reset at the start of every search and is empty
// when no search has run.
func (net *RBFNet) Trace() []Iteration {
	return net.trace
}
