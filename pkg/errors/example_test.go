package errors_test

import (
	"errors"
	"fmt"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// Example_customErrorTypes shows how a DimensionError is recovered from a wrapped chain.
func Example_customErrorTypes() {
	dimErr := cartErrors.NewDimensionError("DecisionTreeClassifier.Predict", 8, 7, 1)

	wrappedErr := fmt.Errorf("rule prediction failed: %w", dimErr)

	var dimensionErr *cartErrors.DimensionError
	if errors.As(wrappedErr, &dimensionErr) {
		fmt.Printf("Dimension error: expected %d features, got %d\n",
			dimensionErr.Expected, dimensionErr.Got)
	}

	// Output: Dimension error: expected 8 features, got 7
}

// Example_errorComparison shows type checks on the library errors.
func Example_errorComparison() {
	notFittedErr := cartErrors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	valueErr := cartErrors.NewValueError("dataset.Load", "unsupported file extension \".parquet\"")

	var notFitted *cartErrors.NotFittedError
	if errors.As(notFittedErr, &notFitted) {
		fmt.Printf("Model %s is not fitted for %s\n",
			notFitted.ModelName, notFitted.Method)
	}

	var valErr *cartErrors.ValueError
	if errors.As(valueErr, &valErr) {
		fmt.Printf("Value error in %s: %s\n", valErr.Op, valErr.Message)
	}

	// Output: Model DecisionTreeClassifier is not fitted for Predict
	// Value error in dataset.Load: unsupported file extension ".parquet"
}

// Example_errorChaining walks a workflow error chain down to its cause.
func Example_errorChaining() {
	loadErr := fmt.Errorf("invalid data format")
	holdoutErr := fmt.Errorf("holdout split failed: %w", loadErr)
	runErr := fmt.Errorf("workflow failed: %w", holdoutErr)

	current := runErr
	level := 0
	for current != nil {
		fmt.Printf("Level %d: %v\n", level, current)
		current = errors.Unwrap(current)
		level++
	}

	// Output: Level 0: workflow failed: holdout split failed: invalid data format
	// Level 1: holdout split failed: invalid data format
	// Level 2: invalid data format
}

// Example_errorLogging prints a model error the way the workflow reports it.
func Example_errorLogging() {
	baseErr := cartErrors.NewModelError("GridSearchCV.Fit", "empty parameter grid",
		cartErrors.ErrEmptyData)

	opErr := fmt.Errorf("hyperparameter search: %w", baseErr)

	fmt.Printf("Error: %v\n", opErr)

	// Output: Error: hyperparameter search: cart: GridSearchCV.Fit: empty parameter grid: empty data
}
