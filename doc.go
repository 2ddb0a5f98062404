// Package localreg provides radial basis function (RBF) regression for Go,
// designed for fitting smooth response surfaces to scattered multivariate data.
//
// A trained model approximates an unknown function from samples as a weighted
// sum of radially symmetric basis functions placed at representative centers:
//
//	f(x) = Σⱼ wⱼ · kernel(‖x − cⱼ‖ / r)
//
// Training proceeds in stages: inputs and outputs are standardized, centers
// are selected with k-means clustering, weights are solved by least squares,
// and the kernel radius is tuned with a derivative-free search when it is
// not fixed up front.
//
// # Installation
//
// Install localreg using go get:
//
//	go get github.com/NLawrenz/localreg
//
// # Quick Start
//
// Fitting a surface and predicting at new points:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//	    "github.com/NLawrenz/localreg/rbf"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    // Create training data
//	    X := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
//	    y := mat.NewDense(5, 1, []float64{0, 1, 4, 9, 16})
//
//	    // Create and train model
//	    net := rbf.NewRBFNet(rbf.WithNumCenters(5))
//	    if err := net.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Make predictions
//	    X_test := mat.NewDense(2, 1, []float64{1.5, 2.5})
//	    predictions, err := net.Predict(X_test)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println("Predictions:", predictions)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - rbf: The RBF network model (kernels, weight solver, radius search)
//   - cluster: K-means clustering used for center selection
//   - metrics: Error measures (RMS, maximum, mean, bias and spread, in absolute and relative forms)
//   - preprocessing: Standardization of regression datasets
//   - core/model: Core interfaces, fitted-state tracking and model persistence
//   - core/parallel: Parallel processing utilities
//
// # Staged Training
//
// The stages of Fit can be driven individually when centers or radii come
// from elsewhere:
//
//	net := rbf.NewRBFNet(rbf.WithNumCenters(30))
//	if err := net.AdaptNormalization(X, yVec); err != nil { ... }
//	if err := net.ComputeCenters(X); err != nil { ... }
//	if err := net.FitWeights(X, yVec, 1.5); err != nil { ... }
//
// Each stage invalidates the results of the stages after it, so a model is
// never left with weights that do not match its centers.
//
// # Performance
//
// Design matrix construction and prediction parallelize across samples
// automatically for datasets with more than a few hundred rows.
package localreg
