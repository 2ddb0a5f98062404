package cluster

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/NLawrenz/localreg/core/model"
	"github.com/NLawrenz/localreg/pkg/errors"
)

// KMeans はLloyd法によるK-meansクラスタリング
// scikit-learnのKMeansと同様に、k-means++で初期化した中心を
// 割り当てと再計算の反復で収束させる
type KMeans struct {
	model.BaseEstimator

	// ハイパーパラメータ
	nClusters   int     // クラスタ数
	init        string  // 初期化方法: "k-means++", "random"
	maxIter     int     // 最大イテレーション数
	tol         float64 // 収束判定の許容誤差（中心の最大移動量）
	randomState int64   // 乱数シード（負の場合は時刻で初期化）

	// 学習パラメータ
	clusterCenters_ [][]float64 // クラスタ中心（nClusters x nFeatures）
	labels_         []int       // 各サンプルのクラスタラベル
	inertia_        float64     // クラスタ内平方和誤差
	nIter_          int         // 実行されたイテレーション数

	// 内部状態
	rng        *rand.Rand
	nFeatures_ int
}

// NewKMeans は新しいKMeansを作成
func NewKMeans(options ...Option) *KMeans {
	kmeans := &KMeans{
		nClusters:   8,
		init:        "k-means++",
		maxIter:     300,
		tol:         1e-4,
		randomState: -1,
	}

	for _, opt := range options {
		opt(kmeans)
	}

	if kmeans.randomState >= 0 {
		kmeans.rng = rand.New(rand.NewSource(kmeans.randomState))
	} else {
		kmeans.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return kmeans
}

// Option はKMeansの設定オプション
type Option func(*KMeans)

// WithNClusters はクラスタ数を設定
func WithNClusters(n int) Option {
	return func(kmeans *KMeans) {
		kmeans.nClusters = n
	}
}

// WithInit は初期化方法を設定
func WithInit(init string) Option {
	return func(kmeans *KMeans) {
		kmeans.init = init
	}
}

// WithMaxIter は最大イテレーション数を設定
func WithMaxIter(maxIter int) Option {
	return func(kmeans *KMeans) {
		kmeans.maxIter = maxIter
	}
}

// WithTol は収束判定の許容誤差を設定
func WithTol(tol float64) Option {
	return func(kmeans *KMeans) {
		kmeans.tol = tol
	}
}

// WithRandomState は乱数シードを設定
// 同じシードと同じ入力に対して結果は決定的になる
func WithRandomState(seed int64) Option {
	return func(kmeans *KMeans) {
		kmeans.randomState = seed
		if seed >= 0 {
			kmeans.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// Fit はLloyd法でクラスタ中心を学習する
//
// クラスタ数が相異なるデータ点の数を超える場合、空クラスタの中心は
// 直前の位置に留まる（重複した中心が生じ得る）。これは実装依存の
// 挙動であり、呼び出し側で特別扱いはしない。
func (kmeans *KMeans) Fit(X mat.Matrix) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("KMeans.Fit", "empty data", errors.ErrEmptyData)
	}
	if kmeans.nClusters < 1 {
		return errors.NewValidationError("n_clusters", "must be at least 1", kmeans.nClusters)
	}
	if rows < kmeans.nClusters {
		return errors.Newf("localreg: KMeans.Fit: n_samples=%d should be >= n_clusters=%d", rows, kmeans.nClusters)
	}

	kmeans.nFeatures_ = cols
	centers := kmeans.initializeCenters(X)
	labels := make([]int, rows)

	var iter int
	for iter = 0; iter < kmeans.maxIter; iter++ {
		// 各サンプルを最近傍の中心に割り当て
		for i := 0; i < rows; i++ {
			sample := mat.Row(nil, i, X)
			labels[i] = nearestCenter(sample, centers)
		}

		// 中心をクラスタ平均で再計算
		newCenters := make([][]float64, kmeans.nClusters)
		counts := make([]int, kmeans.nClusters)
		for c := range newCenters {
			newCenters[c] = make([]float64, cols)
		}
		for i := 0; i < rows; i++ {
			c := labels[i]
			counts[c]++
			for j := 0; j < cols; j++ {
				newCenters[c][j] += X.At(i, j)
			}
		}

		shift := 0.0
		for c := 0; c < kmeans.nClusters; c++ {
			if counts[c] == 0 {
				// 空クラスタは中心を動かさない
				copy(newCenters[c], centers[c])
				continue
			}
			for j := 0; j < cols; j++ {
				newCenters[c][j] /= float64(counts[c])
			}
			if d := euclideanDistance(newCenters[c], centers[c]); d > shift {
				shift = d
			}
		}
		centers = newCenters

		if shift <= kmeans.tol {
			iter++
			break
		}
	}

	if iter == kmeans.maxIter {
		errors.Warn(errors.NewConvergenceWarning("KMeans", kmeans.maxIter, ""))
	}

	// 最終的な割り当てと慣性
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		labels[i] = nearestCenter(sample, centers)
	}

	kmeans.clusterCenters_ = centers
	kmeans.labels_ = labels
	kmeans.inertia_ = kmeans.computeInertia(X, centers, labels)
	kmeans.nIter_ = iter

	kmeans.SetFitted()
	return nil
}

// ClusterCenters は学習されたクラスタ中心を返す
func (kmeans *KMeans) ClusterCenters() [][]float64 {
	centers := make([][]float64, len(kmeans.clusterCenters_))
	for i := range kmeans.clusterCenters_ {
		centers[i] = make([]float64, len(kmeans.clusterCenters_[i]))
		copy(centers[i], kmeans.clusterCenters_[i])
	}
	return centers
}

// Labels は学習データのクラスタラベルを返す
func (kmeans *KMeans) Labels() []int {
	if kmeans.labels_ == nil {
		return nil
	}
	labels := make([]int, len(kmeans.labels_))
	copy(labels, kmeans.labels_)
	return labels
}

// Inertia は慣性（クラスタ内平方和誤差）を返す
func (kmeans *KMeans) Inertia() float64 {
	return kmeans.inertia_
}

// NIter は実行されたイテレーション数を返す
func (kmeans *KMeans) NIter() int {
	return kmeans.nIter_
}

// 内部ヘルパーメソッド

// initializeCenters はクラスタ中心を初期化
func (kmeans *KMeans) initializeCenters(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()
	centers := make([][]float64, kmeans.nClusters)

	switch kmeans.init {
	case "random":
		for i := 0; i < kmeans.nClusters; i++ {
			centers[i] = make([]float64, cols)
			idx := kmeans.rng.Intn(rows)
			sample := mat.Row(nil, idx, X)
			copy(centers[i], sample)
		}
		return centers
	default:
		// デフォルトはk-means++
		return kmeans.initKMeansPlusPlus(X)
	}
}

// initKMeansPlusPlus はk-means++初期化を実行
func (kmeans *KMeans) initKMeansPlusPlus(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()
	centers := make([][]float64, kmeans.nClusters)

	// 最初のクラスタ中心をランダムに選択
	centers[0] = make([]float64, cols)
	idx := kmeans.rng.Intn(rows)
	sample := mat.Row(nil, idx, X)
	copy(centers[0], sample)

	// 残りのクラスタ中心を選択
	for c := 1; c < kmeans.nClusters; c++ {
		distances := make([]float64, rows)
		totalDistance := 0.0

		// 各サンプルから最近傍クラスタ中心までの距離の二乗を計算
		for i := 0; i < rows; i++ {
			sample := mat.Row(nil, i, X)
			minDist := math.Inf(1)

			for j := 0; j < c; j++ {
				dist := euclideanDistance(sample, centers[j])
				if dist < minDist {
					minDist = dist
				}
			}

			distances[i] = minDist * minDist
			totalDistance += distances[i]
		}

		// 確率に応じてサンプルを選択
		target := kmeans.rng.Float64() * totalDistance
		cumSum := 0.0
		selectedIdx := 0

		for i := 0; i < rows; i++ {
			cumSum += distances[i]
			if cumSum >= target {
				selectedIdx = i
				break
			}
		}

		centers[c] = make([]float64, cols)
		sample = mat.Row(nil, selectedIdx, X)
		copy(centers[c], sample)
	}

	return centers
}

// computeInertia は慣性（クラスタ内平方和誤差）を計算
func (kmeans *KMeans) computeInertia(X mat.Matrix, centers [][]float64, labels []int) float64 {
	rows, _ := X.Dims()
	inertia := 0.0

	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		dist := euclideanDistance(sample, centers[labels[i]])
		inertia += dist * dist
	}

	return inertia
}

// 補助関数

// nearestCenter は最近傍クラスタを検索
func nearestCenter(sample []float64, centers [][]float64) int {
	minDist := math.Inf(1)
	nearest := 0

	for c, center := range centers {
		dist := euclideanDistance(sample, center)
		if dist < minDist {
			minDist = dist
			nearest = c
		}
	}

	return nearest
}

// euclideanDistance はユークリッド距離を計算
func euclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}

	return math.Sqrt(sum)
}
