// Package preprocessing encodes string class labels into the numeric codes the
// estimators work with.
package preprocessing

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ezoic/cart/core/model"
	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// LabelEncoder はscikit-learn互換のラベルエンコーダー
// 文字列のクラスラベルを 0..n_classes-1 の整数コードに変換する
type LabelEncoder struct {
	state *model.StateManager

	// classes はソート済みのクラス一覧
	classes []string

	// classToIdx はクラス→コードのマップ
	classToIdx map[string]int
}

// NewLabelEncoder は新しいLabelEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewLabelEncoder()
//	codes, err := enc.FitTransform([]string{"no", "yes", "no"})
//	// codes = [0 1 0]
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{state: model.NewStateManager()}
}

// Fit はラベルからクラス一覧を学習する
//
// すべてのラベルが数値として解釈できる場合は数値順 ("2" < "10")、
// それ以外は辞書順でソートする。
//
// パラメータ:
//   - labels: 訓練ラベル
//
// 戻り値:
//   - error: ラベルが空の場合
func (e *LabelEncoder) Fit(labels []string) (err error) {
	defer cartErrors.Recover(&err, "LabelEncoder.Fit")
	if len(labels) == 0 {
		return cartErrors.NewModelError("LabelEncoder.Fit", "empty data", cartErrors.ErrEmptyData)
	}

	seen := make(map[string]struct{})
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	sortLabels(classes)

	e.classes = classes
	e.classToIdx = make(map[string]int, len(classes))
	for i, c := range classes {
		e.classToIdx[c] = i
	}
	e.state.SetDimensions(1, len(labels))
	e.state.SetFitted()
	return nil
}

// Transform はラベルを整数コードに変換する
//
// 戻り値:
//   - []float64: コード (float64 で表現、gonum の y ベクトルにそのまま使える)
//   - error: 未学習、または未知ラベルが含まれる場合
func (e *LabelEncoder) Transform(labels []string) (_ []float64, err error) {
	defer cartErrors.Recover(&err, "LabelEncoder.Transform")
	if err := e.state.RequireFitted("LabelEncoder", "Transform"); err != nil {
		return nil, err
	}

	codes := make([]float64, len(labels))
	for i, l := range labels {
		idx, ok := e.classToIdx[l]
		if !ok {
			return nil, cartErrors.NewValueError("LabelEncoder.Transform",
				fmt.Sprintf("y contains previously unseen label %q at index %d", l, i))
		}
		codes[i] = float64(idx)
	}
	return codes, nil
}

// FitTransform は学習と変換を一度に行う
func (e *LabelEncoder) FitTransform(labels []string) ([]float64, error) {
	if err := e.Fit(labels); err != nil {
		return nil, err
	}
	return e.Transform(labels)
}

// InverseTransform は整数コードを元のラベルに戻す
func (e *LabelEncoder) InverseTransform(codes []float64) ([]string, error) {
	if err := e.state.RequireFitted("LabelEncoder", "InverseTransform"); err != nil {
		return nil, err
	}

	out := make([]string, len(codes))
	for i, c := range codes {
		idx := int(c)
		if float64(idx) != c || idx < 0 || idx >= len(e.classes) {
			return nil, cartErrors.NewValueError("LabelEncoder.InverseTransform",
				fmt.Sprintf("code %v at index %d is not in [0, %d)", c, i, len(e.classes)))
		}
		out[i] = e.classes[idx]
	}
	return out, nil
}

// Classes は学習済みのクラス一覧のコピーを返す
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// IsFitted は学習済みかどうかを返す
func (e *LabelEncoder) IsFitted() bool {
	return e.state.IsFitted()
}

func sortLabels(labels []string) {
	values := make(map[string]float64, len(labels))
	for _, l := range labels {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			sort.Strings(labels)
			return
		}
		values[l] = v
	}
	sort.Slice(labels, func(i, j int) bool {
		return values[labels[i]] < values[labels[j]]
	})
}
