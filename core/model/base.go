// Package model provides the core abstractions shared by the estimators of the module:
//
//   - Estimator / Classifier interfaces used by model selection
//   - StateManager for fitted-state tracking by composition
//   - Model persistence with Go's encoding/gob
//   - scikit-learn interoperability for decision trees exported from Python
//
// Example usage:
//
//	type MyClassifier struct {
//		state *model.StateManager
//		// model-specific fields
//	}
//
//	func (m *MyClassifier) Fit(X, y mat.Matrix) error {
//		// training logic
//		m.state.SetFitted()
//		return nil
//	}
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is anything that can be fitted on a feature matrix and a label column.
type Estimator interface {
	// Fit trains the estimator. X is n×p, y is n×1.
	Fit(X, y mat.Matrix) error

	// IsFitted reports whether Fit has completed successfully.
	IsFitted() bool
}

// ParamSetter exposes hyperparameters by their scikit-learn names.
type ParamSetter interface {
	GetParams() map[string]interface{}
	SetParams(params map[string]interface{}) error
}

// Classifier is the contract model selection relies on.
//
// Predict returns an n×1 matrix of class labels; PredictProba returns an
// n×len(Classes()) matrix whose columns follow Classes().
type Classifier interface {
	Estimator
	ParamSetter

	Predict(X mat.Matrix) (mat.Matrix, error)
	PredictProba(X mat.Matrix) (mat.Matrix, error)
	Score(X, y mat.Matrix) (float64, error)

	// Classes returns the sorted class labels seen during Fit.
	Classes() []float64

	// Clone returns an unfitted copy carrying the same hyperparameters.
	Clone() Classifier
}
