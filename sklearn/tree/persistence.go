package tree

import (
	"bytes"
	"encoding/gob"

	"github.com/ezoic/cart/core/model"
)

// treeState is the gob wire form of a DecisionTreeClassifier.
type treeState struct {
	Criterion           string
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MaxFeatures         string
	MinImpurityDecrease float64
	RandomState         int64
	FeatureNames        []string

	Root               *TreeNode
	Classes            []float64
	FeatureImportances []float64
	NodeCount          int
	State              model.ModelState
}

// GobEncode implements gob.GobEncoder so that model.SaveModel can persist the
// classifier with its unexported fields.
func (dt *DecisionTreeClassifier) GobEncode() ([]byte, error) {
	st := treeState{
		Criterion:           dt.criterion,
		MaxDepth:            dt.maxDepth,
		MinSamplesSplit:     dt.minSamplesSplit,
		MinSamplesLeaf:      dt.minSamplesLeaf,
		MaxFeatures:         dt.maxFeatures,
		MinImpurityDecrease: dt.minImpurityDecrease,
		RandomState:         dt.randomState,
		FeatureNames:        dt.featureNames,
		Root:                dt.root,
		Classes:             dt.classes,
		FeatureImportances:  dt.featureImportances,
		NodeCount:           dt.nodeCount,
		State:               dt.state.GetState(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&st); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (dt *DecisionTreeClassifier) GobDecode(data []byte) error {
	var st treeState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}

	if dt.state == nil {
		dt.state = model.NewStateManager()
	}
	dt.criterion = st.Criterion
	dt.maxDepth = st.MaxDepth
	dt.minSamplesSplit = st.MinSamplesSplit
	dt.minSamplesLeaf = st.MinSamplesLeaf
	dt.maxFeatures = st.MaxFeatures
	dt.minImpurityDecrease = st.MinImpurityDecrease
	dt.randomState = st.RandomState
	dt.featureNames = st.FeatureNames
	dt.root = st.Root
	dt.classes = st.Classes
	dt.featureImportances = st.FeatureImportances
	dt.nodeCount = st.NodeCount
	dt.state.SetState(st.State)
	return nil
}
