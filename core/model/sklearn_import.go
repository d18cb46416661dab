package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ezoic/cart/pkg/errors"
)

// SKLearnModelSpec はscikit-learnモデルのメタデータ
type SKLearnModelSpec struct {
	Name           string `json:"name"`                      // モデル名 (e.g., "DecisionTreeClassifier")
	FormatVersion  string `json:"format_version"`            // フォーマットバージョン
	SKLearnVersion string `json:"sklearn_version,omitempty"` // scikit-learnのバージョン
}

// SKLearnTreeParams は決定木 (DecisionTreeClassifier.tree_) の配列表現
//
// ノード i の子は ChildrenLeft[i] / ChildrenRight[i]、葉は両方 -1。
// Value[i] はクラスごとのサンプル数（または比率）。
type SKLearnTreeParams struct {
	NFeatures          int         `json:"n_features"`
	NClasses           int         `json:"n_classes"`
	Classes            []float64   `json:"classes"`
	FeatureNames       []string    `json:"feature_names,omitempty"`
	Criterion          string      `json:"criterion,omitempty"`
	MaxDepth           int         `json:"max_depth,omitempty"`
	ChildrenLeft       []int       `json:"children_left"`
	ChildrenRight      []int       `json:"children_right"`
	Feature            []int       `json:"feature"`
	Threshold          []float64   `json:"threshold"`
	Value              [][]float64 `json:"value"`
	Impurity           []float64   `json:"impurity,omitempty"`
	NNodeSamples       []int       `json:"n_node_samples,omitempty"`
	FeatureImportances []float64   `json:"feature_importances,omitempty"`
}

// TreeLeaf marks a missing child in ChildrenLeft / ChildrenRight.
const TreeLeaf = -1

// SKLearnModel はscikit-learnからエクスポートされたモデル
type SKLearnModel struct {
	ModelSpec SKLearnModelSpec `json:"model_spec"`
	Params    json.RawMessage  `json:"params"`
}

// LoadSKLearnModelFromFile はファイルからscikit-learnモデルを読み込む
//
// 使用例:
//
//	m, err := model.LoadSKLearnModelFromFile("cart_sklearn.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	params, err := model.LoadDecisionTreeParams(m)
func LoadSKLearnModelFromFile(filename string) (*SKLearnModel, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadSKLearnModelFromReader(file)
}

// LoadSKLearnModelFromReader はReaderからscikit-learnモデルを読み込む
func LoadSKLearnModelFromReader(r io.Reader) (*SKLearnModel, error) {
	var model SKLearnModel
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&model); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	if model.ModelSpec.FormatVersion == "" {
		return nil, errors.NewValueError("LoadSKLearnModel", "format_version is required")
	}

	if model.ModelSpec.FormatVersion != "1.0" {
		return nil, errors.NewValueError("LoadSKLearnModel",
			fmt.Sprintf("unsupported format version: %s", model.ModelSpec.FormatVersion))
	}

	if model.ModelSpec.Name == "" {
		return nil, errors.NewValueError("LoadSKLearnModel", "model name is required")
	}

	return &model, nil
}

// LoadDecisionTreeParams はDecisionTreeClassifierのパラメータを読み込み、構造を検証する
func LoadDecisionTreeParams(model *SKLearnModel) (*SKLearnTreeParams, error) {
	if model.ModelSpec.Name != "DecisionTreeClassifier" {
		return nil, errors.NewValueError("LoadDecisionTreeParams",
			fmt.Sprintf("expected DecisionTreeClassifier, got %s", model.ModelSpec.Name))
	}

	var params SKLearnTreeParams
	if err := json.Unmarshal(model.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &params, nil
}

// Validate checks that the arrays describe a well-formed binary tree.
func (p *SKLearnTreeParams) Validate() error {
	const op = "SKLearnTreeParams.Validate"

	n := len(p.ChildrenLeft)
	if n == 0 {
		return errors.NewValueError(op, "tree has no nodes")
	}
	for name, l := range map[string]int{
		"children_right": len(p.ChildrenRight),
		"feature":        len(p.Feature),
		"threshold":      len(p.Threshold),
		"value":          len(p.Value),
	} {
		if l != n {
			return errors.NewValueError(op,
				fmt.Sprintf("%s has %d entries, children_left has %d", name, l, n))
		}
	}
	if p.NClasses < 1 || len(p.Classes) != p.NClasses {
		return errors.NewValueError(op,
			fmt.Sprintf("n_classes (%d) does not match classes length (%d)", p.NClasses, len(p.Classes)))
	}
	if p.NFeatures < 1 {
		return errors.NewValueError(op, "n_features must be positive")
	}
	if len(p.FeatureNames) > 0 && len(p.FeatureNames) != p.NFeatures {
		return errors.NewValueError(op,
			fmt.Sprintf("feature_names has %d entries, n_features is %d", len(p.FeatureNames), p.NFeatures))
	}

	for i := 0; i < n; i++ {
		left, right := p.ChildrenLeft[i], p.ChildrenRight[i]
		if len(p.Value[i]) != p.NClasses {
			return errors.NewValueError(op, fmt.Sprintf("node %d: value has %d classes", i, len(p.Value[i])))
		}
		if left == TreeLeaf && right == TreeLeaf {
			continue
		}
		if left <= i || left >= n || right <= i || right >= n {
			return errors.NewValueError(op, fmt.Sprintf("node %d: invalid children %d, %d", i, left, right))
		}
		if p.Feature[i] < 0 || p.Feature[i] >= p.NFeatures {
			return errors.NewValueError(op, fmt.Sprintf("node %d: feature index %d out of range", i, p.Feature[i]))
		}
	}
	return nil
}

// ExportSKLearnModel はモデルをscikit-learn互換のJSON形式でエクスポート
//
// パラメータ:
//   - modelName: モデル名
//   - params: モデルパラメータ
//   - w: 出力先Writer
func ExportSKLearnModel(modelName string, params interface{}, w io.Writer) error {
	model := SKLearnModel{
		ModelSpec: SKLearnModelSpec{
			Name:          modelName,
			FormatVersion: "1.0",
		},
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	model.Params = paramsJSON

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	return nil
}
