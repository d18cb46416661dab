package tree

import (
	"slices"

	"github.com/ezoic/cart/pkg/errors"
)

// FeatureImportance pairs a feature name with its importance.
type FeatureImportance struct {
	Name  string
	Value float64
}

// RankFeatureImportances returns the importances sorted in descending order.
// Ties keep column order. If names is nil the model's FeatureNames are used.
func (dt *DecisionTreeClassifier) RankFeatureImportances(names []string) ([]FeatureImportance, error) {
	if err := dt.state.RequireFitted(modelName, "RankFeatureImportances"); err != nil {
		return nil, err
	}
	if names == nil {
		names = dt.FeatureNames()
	}
	if len(names) != len(dt.featureImportances) {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.RankFeatureImportances",
			len(dt.featureImportances), len(names), 1)
	}

	ranking := make([]FeatureImportance, len(names))
	for i, name := range names {
		ranking[i] = FeatureImportance{Name: name, Value: dt.featureImportances[i]}
	}
	slices.SortStableFunc(ranking, func(a, b FeatureImportance) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return 0
	})
	return ranking, nil
}
