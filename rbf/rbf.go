// Package rbf は放射基底関数（RBF）ネットワークによる多次元回帰を提供する。
//
// モデルは f(x) = Σⱼ wⱼ·kernel(‖x-cⱼ‖/r) の形を持ち、学習は
// 正規化 → K-meansによる中心選択 → 最小二乗法による重み決定 → 半径の最適化
// の段階で進む。各段階はFitでまとめて実行できるほか、個別にも呼び出せる。
package rbf

import (
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/NLawrenz/localreg/cluster"
	"github.com/NLawrenz/localreg/core/model"
	"github.com/NLawrenz/localreg/core/parallel"
	"github.com/NLawrenz/localreg/metrics"
	"github.com/NLawrenz/localreg/pkg/errors"
	"github.com/NLawrenz/localreg/pkg/log"
	"github.com/NLawrenz/localreg/preprocessing"
)

// 機械イプシロン（倍精度）
const eps = 2.220446049250313e-16

// 計画行列の構築と予測を並列化する最小サンプル数
const parallelThreshold = 256

// RBFNet は放射基底関数ネットワークによる回帰モデル
//
// 入出力は内部で平均0、標準偏差1に標準化され、中心・重み・半径は
// 標準化された空間で保持される。PredictとSaveは元のスケールで動作する。
type RBFNet struct {
	model.BaseEstimator

	// ハイパーパラメータ
	numCenters  int
	radius      float64 // 0の場合はFitで最適化する
	kernel      Kernel
	measureName string
	keepAspect  bool
	randomState int64
	verbose     bool
	logger      zerolog.Logger
	optTol      float64
	optMaxIter  int
	optMethod   optimize.Method

	norm *preprocessing.Normalizer

	// Centers_ は基底関数の中心（標準化空間、K×D行列）
	Centers_ *mat.Dense

	// Coeffs_ は基底関数の重み（K要素のベクトル）
	Coeffs_ *mat.VecDense

	// Radius_ は学習済みのカーネル半径（標準化空間）
	Radius_ float64

	// Residual_ は最小二乗問題の残差二乗和
	// 計画行列が列フルランクかつ過剰決定（N > K）の場合のみ定義され、
	// それ以外ではNaNになる
	Residual_ float64

	trace []Iteration
}

var (
	_ model.Model       = (*RBFNet)(nil)
	_ model.Persistable = (*RBFNet)(nil)
)

// NewRBFNet は新しいRBFNetを作成する
//
// デフォルトでは中心数50、ガウスカーネルで、半径はFit時に
// RMS誤差を最小化するよう探索される。
func NewRBFNet(options ...Option) *RBFNet {
	net := &RBFNet{
		numCenters:  50,
		radius:      0,
		kernel:      Gaussian,
		measureName: metrics.RMS,
		randomState: -1,
		logger:      log.NewProgressLogger(os.Stderr),
		optTol:      1e-6,
		optMaxIter:  200,
		Radius_:     math.NaN(),
		Residual_:   math.NaN(),
	}
	for _, option := range options {
		option(net)
	}
	return net
}

// Fit は訓練データでモデルを学習する
//
// 正規化統計量の計算、K-meansによる中心選択、重みの最小二乗解を
// 順に実行する。WithRadiusで半径が指定されていればその値を使い、
// 未指定なら選択された誤差尺度を最小化する半径を探索する。
//
// パラメータ:
//   - X: 訓練入力 (n_samples × n_features の行列)
//   - y: 訓練出力 (n_samples × 1 の行列)
//
// 戻り値:
//   - error: エラーが発生した場合
func (net *RBFNet) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RBFNet.Fit")

	if net.radius < 0 || math.IsNaN(net.radius) {
		return errors.NewValidationError("radius", "must be a non-negative number", net.radius)
	}

	yr, yc := y.Dims()
	if yc != 1 {
		return errors.NewValueError("RBFNet.Fit", fmt.Sprintf("y must be a single-column matrix, got %d columns", yc))
	}
	yVec := mat.NewVecDense(yr, nil)
	for i := 0; i < yr; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	if err := net.AdaptNormalization(X, yVec); err != nil {
		return err
	}
	if err := net.ComputeCenters(X); err != nil {
		return err
	}
	if net.radius > 0 {
		return net.FitWeights(X, yVec, net.radius)
	}
	return net.FitWeightsAndRadius(X, yVec)
}

// AdaptNormalization は訓練データから正規化統計量を計算する
//
// 中心と重みは標準化空間で保持されるため、この呼び出しにより
// 既存の中心・重みは無効になり、モデルは未学習状態に戻る。
func (net *RBFNet) AdaptNormalization(X mat.Matrix, y mat.Vector) error {
	norm := preprocessing.NewNormalizer(net.keepAspect)
	if err := norm.Fit(X, y); err != nil {
		return err
	}
	net.norm = norm

	// 正規化が変わると標準化空間の座標が変わるため、下流の結果を破棄する
	net.Centers_ = nil
	net.Coeffs_ = nil
	net.Radius_ = math.NaN()
	net.Residual_ = math.NaN()
	net.Reset()
	return nil
}

// ComputeCenters はK-meansクラスタリングで基底関数の中心を選択する
//
// AdaptNormalizationの後に呼び出すこと。中心が変わると既存の重みは
// 無効になるため、モデルは未学習状態に戻る。
func (net *RBFNet) ComputeCenters(X mat.Matrix) error {
	if net.norm == nil || !net.norm.IsFitted() {
		return errors.NewNotFittedError("RBFNet", "ComputeCenters")
	}
	if net.numCenters < 1 {
		return errors.NewValidationError("num_centers", "must be at least 1", net.numCenters)
	}
	n, _ := X.Dims()
	if net.numCenters > n {
		return errors.NewValidationError("num_centers",
			fmt.Sprintf("must not exceed the number of samples (%d)", n), net.numCenters)
	}

	inp, err := net.norm.NormalizeInput(X)
	if err != nil {
		return err
	}

	kmeans := cluster.NewKMeans(
		cluster.WithNClusters(net.numCenters),
		cluster.WithRandomState(net.randomState),
	)
	if err := kmeans.Fit(inp); err != nil {
		return errors.NewModelError("RBFNet.ComputeCenters", "center selection failed", err)
	}

	centers := kmeans.ClusterCenters()
	_, d := inp.Dims()
	dense := mat.NewDense(len(centers), d, nil)
	for i, center := range centers {
		dense.SetRow(i, center)
	}
	net.Centers_ = dense

	net.Coeffs_ = nil
	net.Radius_ = math.NaN()
	net.Residual_ = math.NaN()
	net.Reset()
	return nil
}

// FitWeights は与えられた半径で基底関数の重みを最小二乗法で決定する
//
// 特異値分解により最小ノルム解を計算するため、計画行列がランク落ち
// していても解が得られる。成功するとモデルは学習済みになる。
//
// パラメータ:
//   - X: 訓練入力 (n_samples × n_features の行列)
//   - y: 訓練出力 (n_samples のベクトル)
//   - radius: カーネル半径（標準化空間、正の値）
func (net *RBFNet) FitWeights(X mat.Matrix, y mat.Vector, radius float64) (err error) {
	defer errors.Recover(&err, "RBFNet.FitWeights")

	if net.Centers_ == nil || net.norm == nil {
		return errors.NewNotFittedError("RBFNet", "FitWeights")
	}
	if radius <= 0 || math.IsNaN(radius) {
		return errors.NewValidationError("radius", "must be positive", radius)
	}
	n, _ := X.Dims()
	if y.Len() != n {
		return errors.NewDimensionError("RBFNet.FitWeights", n, y.Len(), 0)
	}

	inp, err := net.norm.NormalizeInput(X)
	if err != nil {
		return err
	}
	outp, err := net.norm.NormalizeOutput(y)
	if err != nil {
		return err
	}

	design := net.designMatrix(inp, radius)
	coeffs, residual, err := solveMinNorm(design, outp)
	if err != nil {
		return err
	}

	net.Coeffs_ = coeffs
	net.Radius_ = radius
	net.Residual_ = residual
	net.SetFitted()
	return nil
}

// designMatrix は標準化済み入力に対する計画行列 Φᵢⱼ = kernel(‖xᵢ-cⱼ‖/r) を構築する
func (net *RBFNet) designMatrix(inp *mat.Dense, radius float64) *mat.Dense {
	n, _ := inp.Dims()
	k, _ := net.Centers_.Dims()

	design := mat.NewDense(n, k, nil)
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := inp.RawRowView(i)
			for j := 0; j < k; j++ {
				center := net.Centers_.RawRowView(j)
				sum := 0.0
				for l := range row {
					diff := row[l] - center[l]
					sum += diff * diff
				}
				design.Set(i, j, net.kernel.Eval(math.Sqrt(sum)/radius))
			}
		}
	})
	return design
}

// solveMinNorm は最小二乗問題 min‖Φw-y‖² の最小ノルム解を特異値分解で求める
//
// 数値ランクは max(n,k)·eps·s_max を下回る特異値を切り捨てて決める。
// 残差二乗和は列フルランクかつn>kの場合のみ意味を持ち、それ以外はNaNを返す。
func solveMinNorm(design *mat.Dense, y *mat.VecDense) (*mat.VecDense, float64, error) {
	n, k := design.Dims()

	var svd mat.SVD
	if !svd.Factorize(design, mat.SVDThin) {
		return nil, 0, errors.NewModelError("RBFNet.FitWeights", "SVD factorization failed", nil)
	}

	sv := svd.Values(nil)
	maxDim := n
	if k > maxDim {
		maxDim = k
	}
	tol := float64(maxDim) * eps * sv[0]
	rank := 0
	for _, s := range sv {
		if s > tol {
			rank++
		}
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// w = V·diag(1/sᵢ)·Uᵀy（切り捨てた特異値成分はゼロ）
	projected := make([]float64, rank)
	for i := 0; i < rank; i++ {
		dot := 0.0
		for r := 0; r < n; r++ {
			dot += u.At(r, i) * y.AtVec(r)
		}
		projected[i] = dot / sv[i]
	}

	coeffs := mat.NewVecDense(k, nil)
	for j := 0; j < k; j++ {
		dot := 0.0
		for i := 0; i < rank; i++ {
			dot += v.At(j, i) * projected[i]
		}
		coeffs.SetVec(j, dot)
	}

	if err := errors.CheckNumericalStability("RBFNet.FitWeights", coeffs.RawVector().Data, 0); err != nil {
		return nil, 0, err
	}

	residual := math.NaN()
	if rank == k && n > k {
		var pred mat.VecDense
		pred.MulVec(design, coeffs)
		sum := 0.0
		for i := 0; i < n; i++ {
			diff := pred.AtVec(i) - y.AtVec(i)
			sum += diff * diff
		}
		residual = sum
	}

	return coeffs, residual, nil
}

// Predict は入力に対するモデルの予測値を返す
//
// パラメータ:
//   - X: 予測対象の入力 (n_samples × n_features の行列)
//
// 戻り値:
//   - mat.Matrix: 予測値 (n_samples × 1 の行列、元のスケール)
//   - error: モデルが未学習の場合、または次元が一致しない場合
func (net *RBFNet) Predict(X mat.Matrix) (mat.Matrix, error) {
	pred, err := net.predictVec(X)
	if err != nil {
		return nil, err
	}

	n := pred.Len()
	result := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		result.Set(i, 0, pred.AtVec(i))
	}
	return result, nil
}

// predictVec は予測値を元のスケールのベクトルとして返す
func (net *RBFNet) predictVec(X mat.Matrix) (*mat.VecDense, error) {
	if !net.IsFitted() {
		return nil, errors.NewNotFittedError("RBFNet", "Predict")
	}

	inp, err := net.norm.NormalizeInput(X)
	if err != nil {
		return nil, err
	}

	n, _ := inp.Dims()
	k, _ := net.Centers_.Dims()
	out := mat.NewVecDense(n, nil)
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := inp.RawRowView(i)
			sum := 0.0
			for j := 0; j < k; j++ {
				center := net.Centers_.RawRowView(j)
				dist := 0.0
				for l := range row {
					diff := row[l] - center[l]
					dist += diff * diff
				}
				sum += net.Coeffs_.AtVec(j) * net.kernel.Eval(math.Sqrt(dist)/net.Radius_)
			}
			out.SetVec(i, sum)
		}
	})

	return net.norm.DenormalizeOutput(out)
}

// Score はテストデータに対する誤差尺度の値を返す
//
// 尺度はWithMeasureで選択されたもの（デフォルトはRMS誤差）を使う。
func (net *RBFNet) Score(X, y mat.Matrix) (float64, error) {
	measure, err := metrics.ByName(net.measureName)
	if err != nil {
		return 0, err
	}

	pred, err := net.predictVec(X)
	if err != nil {
		return 0, err
	}

	yr, yc := y.Dims()
	if yc != 1 {
		return 0, errors.NewValueError("RBFNet.Score", fmt.Sprintf("y must be a single-column matrix, got %d columns", yc))
	}
	yVec := mat.NewVecDense(yr, nil)
	for i := 0; i < yr; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	return measure(yVec, pred)
}

// Kernel は設定されているカーネルを返す
func (net *RBFNet) Kernel() Kernel {
	return net.kernel
}

// Normalizer は学習済みの正規化器を返す（未学習の場合はnil）
func (net *RBFNet) Normalizer() *preprocessing.Normalizer {
	return net.norm
}

// String はRBFNetの文字列表現を返す
func (net *RBFNet) String() string {
	if !net.IsFitted() {
		return fmt.Sprintf("RBFNet(num_centers=%d, kernel=%s)", net.numCenters, net.kernel.Name())
	}
	k, _ := net.Centers_.Dims()
	return fmt.Sprintf("RBFNet(num_centers=%d, kernel=%s, radius=%.6g)", k, net.kernel.Name(), net.Radius_)
}
