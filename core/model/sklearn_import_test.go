package model

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

const stumpJSON = `{
  "model_spec": {"name": "DecisionTreeClassifier", "format_version": "1.0", "sklearn_version": "1.5.0"},
  "params": {
    "n_features": 8,
    "n_classes": 2,
    "classes": [0, 1],
    "children_left": [1, -1, -1],
    "children_right": [2, -1, -1],
    "feature": [1, -2, -2],
    "threshold": [127.5, -2, -2],
    "value": [[500, 268], [391, 94], [109, 174]]
  }
}`

func stump() *SKLearnTreeParams {
	return &SKLearnTreeParams{
		NFeatures:     8,
		NClasses:      2,
		Classes:       []float64{0, 1},
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{1, -2, -2},
		Threshold:     []float64{127.5, -2, -2},
		Value:         [][]float64{{500, 268}, {391, 94}, {109, 174}},
	}
}

func TestLoadSKLearnModel(t *testing.T) {
	m, err := LoadSKLearnModelFromReader(strings.NewReader(stumpJSON))
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", m.ModelSpec.SKLearnVersion)

	params, err := LoadDecisionTreeParams(m)
	require.NoError(t, err)
	assert.Equal(t, stump(), params)

	path := filepath.Join(t.TempDir(), "cart_sklearn.json")
	require.NoError(t, os.WriteFile(path, []byte(stumpJSON), 0o644))
	fromFile, err := LoadSKLearnModelFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.ModelSpec, fromFile.ModelSpec)
}

func TestLoadSKLearnModelErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"not json", "{", "failed to decode JSON"},
		{"missing version", `{"model_spec": {"name": "DecisionTreeClassifier"}}`, "format_version is required"},
		{"unsupported version", `{"model_spec": {"name": "DecisionTreeClassifier", "format_version": "2.0"}}`, "unsupported format version: 2.0"},
		{"missing name", `{"model_spec": {"format_version": "1.0"}}`, "model name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSKLearnModelFromReader(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := LoadSKLearnModelFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadDecisionTreeParams(&SKLearnModel{ModelSpec: SKLearnModelSpec{Name: "LogisticRegression", FormatVersion: "1.0"}})
	var verr *cartErrors.ValueError
	assert.ErrorAs(t, err, &verr)
}

func TestSKLearnTreeParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *SKLearnTreeParams)
		wantErr string
	}{
		{"valid", func(p *SKLearnTreeParams) {}, ""},
		{"no nodes", func(p *SKLearnTreeParams) { p.ChildrenLeft = nil }, "tree has no nodes"},
		{"short threshold", func(p *SKLearnTreeParams) { p.Threshold = p.Threshold[:2] }, "threshold has 2 entries"},
		{"classes mismatch", func(p *SKLearnTreeParams) { p.Classes = []float64{0} }, "does not match classes length"},
		{"no features", func(p *SKLearnTreeParams) { p.NFeatures = 0 }, "n_features must be positive"},
		{"feature names", func(p *SKLearnTreeParams) { p.FeatureNames = []string{"Glucose"} }, "feature_names has 1 entries"},
		{"value width", func(p *SKLearnTreeParams) { p.Value[1] = []float64{1} }, "node 1: value has 1 classes"},
		{"child points back", func(p *SKLearnTreeParams) { p.ChildrenLeft[0] = 0 }, "node 0: invalid children"},
		{"feature out of range", func(p *SKLearnTreeParams) { p.Feature[0] = 8 }, "feature index 8 out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := stump()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *cartErrors.ValueError
			require.ErrorAs(t, err, &verr)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestExportSKLearnModel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportSKLearnModel("DecisionTreeClassifier", stump(), &buf))
	assert.Contains(t, buf.String(), `"format_version": "1.0"`)

	m, err := LoadSKLearnModelFromReader(&buf)
	require.NoError(t, err)
	params, err := LoadDecisionTreeParams(m)
	require.NoError(t, err)
	assert.Equal(t, stump(), params)

	err = ExportSKLearnModel("DecisionTreeClassifier", map[string]any{"bad": make(chan int)}, &buf)
	assert.ErrorContains(t, err, "failed to marshal params")
}
