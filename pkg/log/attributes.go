// Package log defines standard attribute keys for model fitting operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging in localreg. Using these standard keys enables filtering and
// analysis of training runs, in particular the iteration records emitted by
// the radius optimizer.
//
// The keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis.

package log

// Model and Operation Context
// These attributes identify the model type and the operation being performed.
const (
	// ModelNameKey identifies the type of model.
	// Examples: "RBFNet", "Normalizer", "KMeans"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "fit_weights", "fit_weights_and_radius"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "rbf", "preprocessing", "cluster", "metrics"
	ComponentKey = "ml.component"
)

// Data Shape
// These attributes describe the structure of the data being processed.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of independent variables (columns).
	FeaturesKey = "data.features"

	// CentersKey indicates the number of radial basis functions.
	CentersKey = "model.centers"
)

// Optimization Progress
// These attributes describe the state of an iterative fitting procedure.
const (
	// IterationKey is the 1-based objective evaluation counter.
	IterationKey = "opt.iteration"

	// RadiusKey is the trial radius at the current evaluation.
	RadiusKey = "opt.radius"

	// ErrorValueKey is the error measure at the current evaluation.
	ErrorValueKey = "opt.error"

	// MeasureKey names the error measure driving the optimization.
	// Examples: "rms", "mean_rel"
	MeasureKey = "opt.measure"
)
