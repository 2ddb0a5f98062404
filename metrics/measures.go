// Package metrics は回帰モデルの誤差指標を提供します。
//
// すべての指標は measure(true, pred) の形の純粋関数で、半径最適化の
// 目的関数としても、学習後の評価にも同じように使えます。指標は名前で
// 選択できます（ByName）。
//
// 相対誤差系の指標（(pred-true)/true を使うもの）は true == 0 の要素に
// 対して定義されません。その場合はゼロ除算の結果（Infまたは NaN）を
// そのまま返します。ゼロを含まない従属変数に対してのみ相対指標を選ぶ
// のは呼び出し側の責任です。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/NLawrenz/localreg/pkg/errors"
)

// Measure は誤差指標のシグネチャ
// 真値と予測値のベクトルからスカラーの誤差を計算する
type Measure func(yTrue, yPred *mat.VecDense) (float64, error)

// 指標の登録名
const (
	RMS     = "rms"
	RMSRel  = "rms_rel"
	MaxAbs  = "max_abs"
	MaxRel  = "max_rel"
	MeanAbs = "mean_abs"
	MeanRel = "mean_rel"
	Bias    = "bias"
	RelBias = "rel_bias"
	Std     = "std"
	RelStd  = "rel_std"
)

var measuresByName = map[string]Measure{
	RMS:     RMSError,
	RMSRel:  RMSRelError,
	MaxAbs:  MaxAbsError,
	MaxRel:  MaxRelError,
	MeanAbs: MeanAbsError,
	MeanRel: MeanRelError,
	Bias:    ErrorBias,
	RelBias: RelErrorBias,
	Std:     ErrorStd,
	RelStd:  RelErrorStd,
}

// ByName は登録名から誤差指標を取得する
// 未知の名前はValidationErrorになる
func ByName(name string) (Measure, error) {
	m, ok := measuresByName[name]
	if !ok {
		return nil, errors.NewValidationError("measure", "unknown error measure", name)
	}
	return m, nil
}

// Names は登録されている指標名の一覧を返す
func Names() []string {
	return []string{RMS, RMSRel, MaxAbs, MaxRel, MeanAbs, MeanRel, Bias, RelBias, Std, RelStd}
}

// checkPair は2つのベクトルの長さを検証する
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// RMSError は二乗平均平方根誤差を計算する
func RMSError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("RMSError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		e := yPred.AtVec(i) - yTrue.AtVec(i)
		sum += e * e
	}

	return math.Sqrt(sum / float64(n)), nil
}

// RMSRelError は相対誤差の二乗平均平方根を計算する
func RMSRelError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("RMSRelError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		e := (yPred.AtVec(i) - yTrue.AtVec(i)) / yTrue.AtVec(i)
		sum += e * e
	}

	return math.Sqrt(sum / float64(n)), nil
}

// MaxAbsError は絶対誤差の最大値を計算する
func MaxAbsError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MaxAbsError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var max float64
	for i := 0; i < n; i++ {
		if e := math.Abs(yPred.AtVec(i) - yTrue.AtVec(i)); e > max {
			max = e
		}
	}

	return max, nil
}

// MaxRelError は相対誤差の絶対値の最大値を計算する
func MaxRelError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MaxRelError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var max float64
	for i := 0; i < n; i++ {
		e := math.Abs((yPred.AtVec(i) - yTrue.AtVec(i)) / yTrue.AtVec(i))
		if e > max || math.IsNaN(e) {
			max = e
		}
	}

	return max, nil
}

// MeanAbsError は絶対誤差の平均を計算する
func MeanAbsError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MeanAbsError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yPred.AtVec(i) - yTrue.AtVec(i))
	}

	return sum / float64(n), nil
}

// MeanRelError は相対誤差の絶対値の平均を計算する
func MeanRelError(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MeanRelError", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs((yPred.AtVec(i) - yTrue.AtVec(i)) / yTrue.AtVec(i))
	}

	return sum / float64(n), nil
}

// ErrorBias は誤差の平均（バイアス）を計算する
func ErrorBias(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("ErrorBias", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += yPred.AtVec(i) - yTrue.AtVec(i)
	}

	return sum / float64(n), nil
}

// RelErrorBias は相対誤差の平均（バイアス）を計算する
func RelErrorBias(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("RelErrorBias", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += (yPred.AtVec(i) - yTrue.AtVec(i)) / yTrue.AtVec(i)
	}

	return sum / float64(n), nil
}

// ErrorStd は誤差の母集団標準偏差を計算する
func ErrorStd(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("ErrorStd", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	e := make([]float64, n)
	var mean float64
	for i := 0; i < n; i++ {
		e[i] = yPred.AtVec(i) - yTrue.AtVec(i)
		mean += e[i]
	}
	mean /= float64(n)

	var sumSq float64
	for i := 0; i < n; i++ {
		d := e[i] - mean
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(n)), nil
}

// RelErrorStd は相対誤差の母集団標準偏差を計算する
func RelErrorStd(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("RelErrorStd", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	e := make([]float64, n)
	var mean float64
	for i := 0; i < n; i++ {
		e[i] = (yPred.AtVec(i) - yTrue.AtVec(i)) / yTrue.AtVec(i)
		mean += e[i]
	}
	mean /= float64(n)

	var sumSq float64
	for i := 0; i < n; i++ {
		d := e[i] - mean
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(n)), nil
}
