package rbf

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/NLawrenz/localreg/pkg/errors"
)

// makeSurface は滑らかな2次元関数 sin(x₀)+0.5·cos(2x₁) からサンプルを生成する
func makeSurface(n int, noise float64, seed int64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x0 := rng.Float64()*4 - 2
		x1 := rng.Float64()*4 - 2
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		y.Set(i, 0, math.Sin(x0)+0.5*math.Cos(2*x1)+noise*rng.NormFloat64())
	}
	return X, y
}

func TestRBFNetFixedRadius(t *testing.T) {
	X, y := makeSurface(400, 0, 42)
	Xtest, ytest := makeSurface(100, 0, 43)

	net := NewRBFNet(
		WithNumCenters(25),
		WithRadius(1.5),
		WithRandomState(7),
	)
	if err := net.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !net.IsFitted() {
		t.Fatal("model not fitted after Fit")
	}
	if net.Radius_ != 1.5 {
		t.Errorf("Radius_ = %v, want the fixed radius 1.5", net.Radius_)
	}
	if math.IsNaN(net.Residual_) {
		t.Error("Residual_ should be defined for an overdetermined full-rank fit")
	}

	rms, err := net.Score(Xtest, ytest)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	// 平均値だけの予測でもRMSは出力の標準偏差（約0.8）になる。
	// 25個の基底でこの滑らかな面は十分に表現できるはず。
	if rms > 0.3 {
		t.Errorf("held-out RMS = %v, want below 0.3", rms)
	}

	few := NewRBFNet(
		WithNumCenters(3),
		WithRadius(1.5),
		WithRandomState(7),
	)
	if err := few.Fit(X, y); err != nil {
		t.Fatalf("Fit with 3 centers failed: %v", err)
	}
	fewRMS, err := few.Score(Xtest, ytest)
	if err != nil {
		t.Fatalf("Score with 3 centers failed: %v", err)
	}
	if rms >= fewRMS {
		t.Errorf("25 centers (RMS %v) should beat 3 centers (RMS %v)", rms, fewRMS)
	}
}

func TestRBFNetInterpolation(t *testing.T) {
	// 中心を訓練点そのものに置くと設計行列は正方になり、
	// ガウスカーネルでは訓練データを補間する
	X, y := makeSurface(30, 0, 1)
	n, _ := X.Dims()

	yVec := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	net := NewRBFNet()
	if err := net.AdaptNormalization(X, yVec); err != nil {
		t.Fatalf("AdaptNormalization failed: %v", err)
	}
	inp, err := net.Normalizer().NormalizeInput(X)
	if err != nil {
		t.Fatalf("NormalizeInput failed: %v", err)
	}
	net.Centers_ = inp

	if err := net.FitWeights(X, yVec, 1.0); err != nil {
		t.Fatalf("FitWeights failed: %v", err)
	}

	pred, err := net.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < n; i++ {
		diff := math.Abs(pred.At(i, 0) - y.At(i, 0))
		if diff > 1e-5 {
			t.Errorf("interpolation error at sample %d: %v", i, diff)
		}
	}

	// 正方の設計行列では残差は定義されない
	if !math.IsNaN(net.Residual_) {
		t.Errorf("Residual_ = %v, want NaN for a square system", net.Residual_)
	}
}

func TestRBFNetRankDeficient(t *testing.T) {
	// 重複した中心は設計行列の列を線形従属にするが、
	// 最小ノルム解により学習は成功する
	X, y := makeSurface(50, 0, 2)
	n, _ := X.Dims()

	yVec := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	net := NewRBFNet()
	if err := net.AdaptNormalization(X, yVec); err != nil {
		t.Fatalf("AdaptNormalization failed: %v", err)
	}

	centers := mat.NewDense(4, 2, []float64{
		0.5, 0.5,
		0.5, 0.5,
		-0.5, -0.5,
		-0.5, -0.5,
	})
	net.Centers_ = centers

	if err := net.FitWeights(X, yVec, 1.0); err != nil {
		t.Fatalf("FitWeights on a rank-deficient system failed: %v", err)
	}
	for j := 0; j < net.Coeffs_.Len(); j++ {
		if math.IsNaN(net.Coeffs_.AtVec(j)) || math.IsInf(net.Coeffs_.AtVec(j), 0) {
			t.Fatalf("coefficient %d is not finite: %v", j, net.Coeffs_.AtVec(j))
		}
	}
	// 重複した列は同じ係数を半分ずつ受け取る（最小ノルム解の性質）
	if diff := math.Abs(net.Coeffs_.AtVec(0) - net.Coeffs_.AtVec(1)); diff > 1e-10 {
		t.Errorf("duplicate centers should share weight, got difference %v", diff)
	}
	if !math.IsNaN(net.Residual_) {
		t.Errorf("Residual_ = %v, want NaN for a rank-deficient system", net.Residual_)
	}
}

func TestRBFNetStagedCallOrder(t *testing.T) {
	X, y := makeSurface(20, 0, 3)
	n, _ := X.Dims()
	yVec := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	t.Run("centers before normalization", func(t *testing.T) {
		net := NewRBFNet(WithNumCenters(5))
		err := net.ComputeCenters(X)
		var notFitted *errors.NotFittedError
		if !errors.As(err, &notFitted) {
			t.Errorf("expected NotFittedError, got %v", err)
		}
	})

	t.Run("weights before centers", func(t *testing.T) {
		net := NewRBFNet(WithNumCenters(5))
		if err := net.AdaptNormalization(X, yVec); err != nil {
			t.Fatalf("AdaptNormalization failed: %v", err)
		}
		err := net.FitWeights(X, yVec, 1.0)
		var notFitted *errors.NotFittedError
		if !errors.As(err, &notFitted) {
			t.Errorf("expected NotFittedError, got %v", err)
		}
	})

	t.Run("predict before fit", func(t *testing.T) {
		net := NewRBFNet()
		_, err := net.Predict(X)
		var notFitted *errors.NotFittedError
		if !errors.As(err, &notFitted) {
			t.Errorf("expected NotFittedError, got %v", err)
		}
	})

	t.Run("non-positive radius", func(t *testing.T) {
		net := NewRBFNet(WithNumCenters(5), WithRandomState(1))
		if err := net.AdaptNormalization(X, yVec); err != nil {
			t.Fatalf("AdaptNormalization failed: %v", err)
		}
		if err := net.ComputeCenters(X); err != nil {
			t.Fatalf("ComputeCenters failed: %v", err)
		}
		for _, radius := range []float64{0, -1.5} {
			err := net.FitWeights(X, yVec, radius)
			var validation *errors.ValidationError
			if !errors.As(err, &validation) {
				t.Errorf("radius %v: expected ValidationError, got %v", radius, err)
			}
		}
	})

	t.Run("NaN radius", func(t *testing.T) {
		net := NewRBFNet(WithNumCenters(5), WithRadius(math.NaN()))
		err := net.Fit(X, y)
		var validation *errors.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("more centers than samples", func(t *testing.T) {
		net := NewRBFNet(WithNumCenters(100), WithRadius(1))
		err := net.Fit(X, y)
		var validation *errors.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("feature count mismatch", func(t *testing.T) {
		net := NewRBFNet(WithNumCenters(5), WithRadius(1), WithRandomState(1))
		if err := net.Fit(X, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		wide := mat.NewDense(4, 3, nil)
		_, err := net.Predict(wide)
		var dimension *errors.DimensionError
		if !errors.As(err, &dimension) {
			t.Errorf("expected DimensionError, got %v", err)
		}
	})
}

func TestRBFNetDeterminism(t *testing.T) {
	X, y := makeSurface(200, 0.05, 11)
	Xtest, _ := makeSurface(50, 0, 12)

	train := func() *mat.Dense {
		net := NewRBFNet(
			WithNumCenters(15),
			WithRadius(1.2),
			WithRandomState(99),
		)
		if err := net.Fit(X, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		pred, err := net.Predict(Xtest)
		if err != nil {
			t.Fatalf("Predict failed: %v", err)
		}
		return pred.(*mat.Dense)
	}

	first := train()
	second := train()
	if !mat.Equal(first, second) {
		t.Error("identical seeds should give identical predictions")
	}
}

func TestRBFNetRefitInvalidates(t *testing.T) {
	X, y := makeSurface(60, 0, 21)
	n, _ := X.Dims()
	yVec := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	net := NewRBFNet(WithNumCenters(8), WithRadius(1), WithRandomState(5))
	if err := net.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	// 正規化をやり直すと中心・重みは無効になる
	if err := net.AdaptNormalization(X, yVec); err != nil {
		t.Fatalf("AdaptNormalization failed: %v", err)
	}
	if net.IsFitted() {
		t.Error("model should not be fitted after renormalization")
	}
	if net.Centers_ != nil || net.Coeffs_ != nil {
		t.Error("centers and coefficients should be discarded after renormalization")
	}
	if _, err := net.Predict(X); err == nil {
		t.Error("Predict should fail after renormalization")
	}
}
