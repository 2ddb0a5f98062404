package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/NLawrenz/localreg/core/model"
	"github.com/NLawrenz/localreg/pkg/errors"
)

// Normalizer は回帰データセット（入力行列と出力ベクトル）の標準化を行う
// 入力・出力とも平均0、標準偏差1に変換する
//
// 訓練データからのみ統計量を計算し、以降は凍結される。検証・予測データに
// 対して再計算してはならない（Fitの再呼び出しのみが統計量を更新する）。
type Normalizer struct {
	model.BaseEstimator

	// InputMean は各独立変数の平均値
	InputMean []float64

	// InputScale は各独立変数の標準偏差（母集団標準偏差）
	// KeepAspectが真の場合は全軸で同じ値になる
	InputScale []float64

	// OutputMean は従属変数の平均値
	OutputMean float64

	// OutputScale は従属変数の標準偏差
	OutputScale float64

	// NFeatures は独立変数の数
	NFeatures int

	// KeepAspect は全独立変数を同一の係数でスケールするかどうか
	// 入力変数が同じ物理次元を持つ場合、軸間の相対スケール（アスペクト比）を
	// 保つために真にする
	KeepAspect bool
}

// NewNormalizer は新しいNormalizerを作成する
//
// パラメータ:
//   - keepAspect: 全独立変数を同一の係数でスケールするかどうか
func NewNormalizer(keepAspect bool) *Normalizer {
	return &Normalizer{
		KeepAspect: keepAspect,
	}
}

// Fit は訓練データから統計量（平均、標準偏差）を計算する
//
// パラメータ:
//   - X: 訓練入力 (n_samples × n_features の行列)
//   - y: 訓練出力 (n_samples のベクトル)
//
// 戻り値:
//   - error: エラーが発生した場合
func (n *Normalizer) Fit(X mat.Matrix, y mat.Vector) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("Normalizer.Fit", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != r {
		return errors.NewDimensionError("Normalizer.Fit", r, y.Len(), 0)
	}

	n.NFeatures = c
	n.InputMean = make([]float64, c)
	n.InputScale = make([]float64, c)

	// 各軸の平均を計算
	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		n.InputMean[j] = sum / float64(r)
	}

	if n.KeepAspect {
		// 全要素をひとつの分布とみなした母集団標準偏差
		total := float64(r * c)
		grandMean := 0.0
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				grandMean += X.At(i, j)
			}
		}
		grandMean /= total

		sumSquares := 0.0
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				diff := X.At(i, j) - grandMean
				sumSquares += diff * diff
			}
		}
		scale := math.Sqrt(sumSquares / total)
		if math.Abs(scale) < 1e-8 {
			scale = 1.0
		}
		for j := 0; j < c; j++ {
			n.InputScale[j] = scale
		}
	} else {
		// 軸ごとの母集団標準偏差
		for j := 0; j < c; j++ {
			sumSquares := 0.0
			for i := 0; i < r; i++ {
				diff := X.At(i, j) - n.InputMean[j]
				sumSquares += diff * diff
			}
			n.InputScale[j] = math.Sqrt(sumSquares / float64(r))

			// 標準偏差が0に近い場合は1に設定（ゼロ除算を避ける）
			if math.Abs(n.InputScale[j]) < 1e-8 {
				n.InputScale[j] = 1.0
			}
		}
	}

	// 出力の平均と標準偏差
	sum := 0.0
	for i := 0; i < r; i++ {
		sum += y.AtVec(i)
	}
	n.OutputMean = sum / float64(r)

	sumSquares := 0.0
	for i := 0; i < r; i++ {
		diff := y.AtVec(i) - n.OutputMean
		sumSquares += diff * diff
	}
	n.OutputScale = math.Sqrt(sumSquares / float64(r))
	if math.Abs(n.OutputScale) < 1e-8 {
		n.OutputScale = 1.0
	}

	n.SetFitted()
	return nil
}

// NormalizeInput は学習済みの統計量を使って入力を標準化する
func (n *Normalizer) NormalizeInput(X mat.Matrix) (*mat.Dense, error) {
	if !n.IsFitted() {
		return nil, errors.NewNotFittedError("Normalizer", "NormalizeInput")
	}

	r, c := X.Dims()
	if c != n.NFeatures {
		return nil, errors.NewDimensionError("Normalizer.NormalizeInput", n.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-n.InputMean[j])/n.InputScale[j])
		}
	}

	return result, nil
}

// DenormalizeInput は標準化された入力を元のスケールに戻す
func (n *Normalizer) DenormalizeInput(X mat.Matrix) (*mat.Dense, error) {
	if !n.IsFitted() {
		return nil, errors.NewNotFittedError("Normalizer", "DenormalizeInput")
	}

	r, c := X.Dims()
	if c != n.NFeatures {
		return nil, errors.NewDimensionError("Normalizer.DenormalizeInput", n.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*n.InputScale[j]+n.InputMean[j])
		}
	}

	return result, nil
}

// NormalizeOutput は学習済みの統計量を使って出力を標準化する
func (n *Normalizer) NormalizeOutput(y mat.Vector) (*mat.VecDense, error) {
	if !n.IsFitted() {
		return nil, errors.NewNotFittedError("Normalizer", "NormalizeOutput")
	}

	result := mat.NewVecDense(y.Len(), nil)
	for i := 0; i < y.Len(); i++ {
		result.SetVec(i, (y.AtVec(i)-n.OutputMean)/n.OutputScale)
	}

	return result, nil
}

// DenormalizeOutput は標準化された出力を元のスケールに戻す
func (n *Normalizer) DenormalizeOutput(y mat.Vector) (*mat.VecDense, error) {
	if !n.IsFitted() {
		return nil, errors.NewNotFittedError("Normalizer", "DenormalizeOutput")
	}

	result := mat.NewVecDense(y.Len(), nil)
	for i := 0; i < y.Len(); i++ {
		result.SetVec(i, y.AtVec(i)*n.OutputScale+n.OutputMean)
	}

	return result, nil
}

// String はNormalizerの文字列表現を返す
func (n *Normalizer) String() string {
	if !n.IsFitted() {
		return fmt.Sprintf("Normalizer(keep_aspect=%t)", n.KeepAspect)
	}
	return fmt.Sprintf("Normalizer(keep_aspect=%t, n_features=%d)", n.KeepAspect, n.NFeatures)
}
