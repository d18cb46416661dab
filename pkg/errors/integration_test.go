package errors_test

import (
	"errors"
	"fmt"
	"testing"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// TestErrorWrappingCompatibility checks that library errors survive fmt.Errorf wrapping
func TestErrorWrappingCompatibility(t *testing.T) {
	originalErr := cartErrors.NewNotFittedError("DecisionTreeClassifier", "Predict")

	wrappedErr := fmt.Errorf("rule export failed: %w", originalErr)

	if !errors.Is(wrappedErr, originalErr) {
		t.Errorf("errors.Is failed to identify wrapped error")
	}

	var notFittedErr *cartErrors.NotFittedError
	if !errors.As(wrappedErr, &notFittedErr) {
		t.Fatalf("errors.As failed to extract NotFittedError")
	}

	if notFittedErr.ModelName != "DecisionTreeClassifier" {
		t.Errorf("expected ModelName 'DecisionTreeClassifier', got '%s'", notFittedErr.ModelName)
	}
}

// TestCombinedErrorTypes mixes standard and library errors in one chain
func TestCombinedErrorTypes(t *testing.T) {
	stdErr := fmt.Errorf("standard error")

	customErr := cartErrors.NewModelError("CrossValidate", "fold 3 failed", stdErr)

	wrappedErr := fmt.Errorf("cross-validation: %w", customErr)

	if !errors.Is(wrappedErr, stdErr) {
		t.Errorf("failed to find standard error in chain")
	}

	var modelErr *cartErrors.ModelError
	if !errors.As(wrappedErr, &modelErr) {
		t.Fatalf("failed to extract ModelError")
	}

	if modelErr.Unwrap() != stdErr {
		t.Errorf("ModelError.Unwrap() didn't return expected error")
	}
}

// TestSentinelErrors checks the sentinel errors through wrappers
func TestSentinelErrors(t *testing.T) {
	err := cartErrors.NewModelError("dataset.LoadCSV", "no rows", cartErrors.ErrEmptyData)

	if !errors.Is(err, cartErrors.ErrEmptyData) {
		t.Errorf("failed to identify ErrEmptyData sentinel")
	}

	wrappedErr := fmt.Errorf("data loader: %w", err)

	if !errors.Is(wrappedErr, cartErrors.ErrEmptyData) {
		t.Errorf("failed to identify ErrEmptyData through wrapper")
	}
}

// TestPredictionMismatchError checks the verification error used by the workflow
func TestPredictionMismatchError(t *testing.T) {
	err := cartErrors.NewPredictionMismatchError("rules", 1, 1, 0)
	wrapped := fmt.Errorf("rule prediction: %w", err)

	var mismatch *cartErrors.PredictionMismatchError
	if !errors.As(wrapped, &mismatch) {
		t.Fatalf("errors.As failed to extract PredictionMismatchError")
	}
	if mismatch.Check != "rules" || mismatch.Row != 1 {
		t.Errorf("unexpected fields: %+v", mismatch)
	}
	want := "cart: rules: prediction mismatch on row 1: expected 1, got 0"
	if mismatch.Error() != want {
		t.Errorf("Error() = %q, want %q", mismatch.Error(), want)
	}
}
