package preprocessing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/cart/preprocessing"
	cartErrors "github.com/ezoic/cart/pkg/errors"
)

func TestLabelEncoder_Fit(t *testing.T) {
	enc := preprocessing.NewLabelEncoder()
	require.NoError(t, enc.Fit([]string{"yes", "no", "yes", "maybe"}))

	assert.True(t, enc.IsFitted())
	assert.Equal(t, []string{"maybe", "no", "yes"}, enc.Classes())
}

func TestLabelEncoder_NumericOrder(t *testing.T) {
	enc := preprocessing.NewLabelEncoder()
	codes, err := enc.FitTransform([]string{"10", "2", "1", "2"})
	require.NoError(t, err)

	// numeric labels sort by value, not lexicographically
	assert.Equal(t, []string{"1", "2", "10"}, enc.Classes())
	assert.Equal(t, []float64{2, 1, 0, 1}, codes)
}

func TestLabelEncoder_InverseTransform(t *testing.T) {
	enc := preprocessing.NewLabelEncoder()
	codes, err := enc.FitTransform([]string{"0", "1", "1", "0"})
	require.NoError(t, err)

	labels, err := enc.InverseTransform(codes)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "1", "0"}, labels)

	_, err = enc.InverseTransform([]float64{2})
	var valErr *cartErrors.ValueError
	assert.ErrorAs(t, err, &valErr)

	_, err = enc.InverseTransform([]float64{0.5})
	assert.ErrorAs(t, err, &valErr)
}

func TestLabelEncoder_UnknownLabel(t *testing.T) {
	enc := preprocessing.NewLabelEncoder()
	require.NoError(t, enc.Fit([]string{"a", "b"}))

	_, err := enc.Transform([]string{"a", "c"})
	var valErr *cartErrors.ValueError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, err.Error(), `"c"`)
}

func TestLabelEncoder_Errors(t *testing.T) {
	enc := preprocessing.NewLabelEncoder()

	_, err := enc.Transform([]string{"a"})
	var nfErr *cartErrors.NotFittedError
	assert.ErrorAs(t, err, &nfErr)

	_, err = enc.InverseTransform([]float64{0})
	assert.ErrorAs(t, err, &nfErr)

	err = enc.Fit(nil)
	assert.ErrorIs(t, err, cartErrors.ErrEmptyData)
}

func TestLabelEncoder_ClassesIsCopy(t *testing.T) {
	enc := preprocessing.NewLabelEncoder()
	require.NoError(t, enc.Fit([]string{"x", "y"}))

	c := enc.Classes()
	c[0] = "mutated"
	assert.Equal(t, []string{"x", "y"}, enc.Classes())
}
