package errors

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with cause",
			op:      "Fit",
			kind:    "invalid input",
			err:     New("test error"),
			wantMsg: "cart: Fit: invalid input: test error",
		},
		{
			name:    "without cause",
			op:      "Predict",
			kind:    "empty tree",
			err:     nil,
			wantMsg: "cart: Predict: empty tree",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())

			var modelErr *ModelError
			require.True(t, As(err, &modelErr))
			assert.Equal(t, tt.op, modelErr.Op)
		})
	}
}

func TestErrorsCarryStackTrace(t *testing.T) {
	err := NewDimensionError("Predict", 8, 7, 1)
	assert.Equal(t, "cart: Predict: dimension mismatch on axis 1 (features). Expected 8, got 7", err.Error())

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("max_depth", "must be non-negative", -1)
	assert.Equal(t, "cart: validation failed for parameter 'max_depth': must be non-negative (got: -1)", err.Error())
}

func TestNotFittedErrorMessage(t *testing.T) {
	err := NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	assert.Equal(t, "cart: DecisionTreeClassifier: this model is not fitted yet. Call Fit() before using PredictProba()", err.Error())
}

func TestWrapKeepsType(t *testing.T) {
	base := NewValueError("LoadCSV", "no header row")
	wrapped := Wrapf(base, "loading %s", "diabetes.csv")

	var valErr *ValueError
	require.True(t, As(wrapped, &valErr))
	assert.Equal(t, "no header row", valErr.Message)
	assert.True(t, strings.HasPrefix(wrapped.Error(), "loading diabetes.csv: "))
	assert.True(t, Is(Wrap(ErrEmptyData, "ctx"), ErrEmptyData))
}

func TestWarnUsesHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	t.Cleanup(func() {
		SetWarningHandler(func(w error) {})
	})

	Warn(NewUndefinedMetricWarning("recall", "no true samples", 0))

	require.Len(t, got, 1)
	assert.Equal(t, "'recall' is ill-defined and being set to 0.000000 due to no true samples.", got[0].Error())
}

func TestWarnPrefersZerolog(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	handlerCalled := false

	SetWarningHandler(func(w error) { handlerCalled = true })
	SetZerologWarnFunc(func(w error) {
		e := zl.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			e = e.EmbedObject(m)
		}
		e.Msg(w.Error())
	})
	t.Cleanup(func() {
		SetZerologWarnFunc(nil)
		SetWarningHandler(func(w error) {})
	})

	Warn(NewDataConversionWarning("string", "float64", "numeric label column"))

	assert.False(t, handlerCalled)
	assert.Contains(t, buf.String(), `"from_type":"string"`)
	assert.Contains(t, buf.String(), `"type":"DataConversionWarning"`)
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "DecisionTreeClassifier.Fit")
		var nodes []int
		_ = nodes[3]
		return nil
	}

	err := fn()
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, As(err, &panicErr))
	assert.Equal(t, "DecisionTreeClassifier.Fit", panicErr.Operation)
	assert.Contains(t, panicErr.String(), "Stack trace:")
}

func TestRecoverKeepsOriginalError(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "op")
		err = ErrEmptyData
		panic("boom")
	}

	err := fn()
	require.Error(t, err)
	assert.True(t, Is(err, ErrEmptyData))
	assert.Contains(t, err.Error(), "panic in op: boom")
}

func TestSafeExecute(t *testing.T) {
	assert.NoError(t, SafeExecute("noop", func() error { return nil }))

	err := SafeExecute("explode", func() error { panic("kaboom") })
	assert.EqualError(t, err, "panic in explode: kaboom")
}
