package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/NLawrenz/localreg/pkg/errors"
)

func TestNormalizerFit(t *testing.T) {
	tests := []struct {
		name            string
		X               *mat.Dense
		y               *mat.VecDense
		keepAspect      bool
		wantInputMean   []float64
		wantInputScale  []float64
		wantOutputMean  float64
		wantOutputScale float64
		tolerance       float64
		wantErr         bool
	}{
		{
			name: "per-axis scaling",
			X: mat.NewDense(4, 2, []float64{
				0.0, 10.0,
				2.0, 20.0,
				4.0, 30.0,
				6.0, 40.0,
			}),
			y:              mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			keepAspect:     false,
			wantInputMean:  []float64{3.0, 25.0},
			wantInputScale: []float64{math.Sqrt(5.0), math.Sqrt(125.0)},
			wantOutputMean: 2.5,
			// population standard deviation, matching np.std
			wantOutputScale: math.Sqrt(1.25),
			tolerance:       1e-12,
			wantErr:         false,
		},
		{
			name: "keep aspect uses one scale for all axes",
			X: mat.NewDense(2, 2, []float64{
				0.0, 4.0,
				2.0, 6.0,
			}),
			y:             mat.NewVecDense(2, []float64{1.0, 3.0}),
			keepAspect:    true,
			wantInputMean: []float64{1.0, 5.0},
			// std of the flattened matrix {0,4,2,6} about its grand mean 3
			wantInputScale:  []float64{math.Sqrt(5.0), math.Sqrt(5.0)},
			wantOutputMean:  2.0,
			wantOutputScale: 1.0,
			tolerance:       1e-12,
			wantErr:         false,
		},
		{
			name:    "row count mismatch",
			X:       mat.NewDense(3, 2, nil),
			y:       mat.NewVecDense(2, nil),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norm := NewNormalizer(tt.keepAspect)
			err := norm.Fit(tt.X, tt.y)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Fit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			for j, want := range tt.wantInputMean {
				if math.Abs(norm.InputMean[j]-want) > tt.tolerance {
					t.Errorf("InputMean[%d] = %v, want %v", j, norm.InputMean[j], want)
				}
			}
			for j, want := range tt.wantInputScale {
				if math.Abs(norm.InputScale[j]-want) > tt.tolerance {
					t.Errorf("InputScale[%d] = %v, want %v", j, norm.InputScale[j], want)
				}
			}
			if math.Abs(norm.OutputMean-tt.wantOutputMean) > tt.tolerance {
				t.Errorf("OutputMean = %v, want %v", norm.OutputMean, tt.wantOutputMean)
			}
			if math.Abs(norm.OutputScale-tt.wantOutputScale) > tt.tolerance {
				t.Errorf("OutputScale = %v, want %v", norm.OutputScale, tt.wantOutputScale)
			}

			// スケールは必ず正
			for j, s := range norm.InputScale {
				if s <= 0 {
					t.Errorf("InputScale[%d] = %v, must be strictly positive", j, s)
				}
			}
		})
	}
}

func TestNormalizerRoundTrip(t *testing.T) {
	X := mat.NewDense(5, 3, []float64{
		1.2, -4.0, 100.0,
		0.7, -2.5, 250.0,
		3.1, -9.0, 175.0,
		2.2, -1.0, 300.0,
		1.9, -6.5, 225.0,
	})
	y := mat.NewVecDense(5, []float64{10.0, 12.5, 9.0, 14.0, 11.0})

	for _, keepAspect := range []bool{false, true} {
		norm := NewNormalizer(keepAspect)
		if err := norm.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}

		normed, err := norm.NormalizeInput(X)
		if err != nil {
			t.Fatalf("NormalizeInput() error = %v", err)
		}
		recovered, err := norm.DenormalizeInput(normed)
		if err != nil {
			t.Fatalf("DenormalizeInput() error = %v", err)
		}

		r, c := X.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if math.Abs(recovered.At(i, j)-X.At(i, j)) > 1e-12 {
					t.Errorf("keepAspect=%t: input round trip [%d,%d] = %v, want %v",
						keepAspect, i, j, recovered.At(i, j), X.At(i, j))
				}
			}
		}

		normedY, err := norm.NormalizeOutput(y)
		if err != nil {
			t.Fatalf("NormalizeOutput() error = %v", err)
		}
		recoveredY, err := norm.DenormalizeOutput(normedY)
		if err != nil {
			t.Fatalf("DenormalizeOutput() error = %v", err)
		}
		for i := 0; i < y.Len(); i++ {
			if math.Abs(recoveredY.AtVec(i)-y.AtVec(i)) > 1e-12 {
				t.Errorf("keepAspect=%t: output round trip [%d] = %v, want %v",
					keepAspect, i, recoveredY.AtVec(i), y.AtVec(i))
			}
		}

		// 正規化後の統計量を確認（平均0、標準偏差1）
		if !keepAspect {
			for j := 0; j < c; j++ {
				mean, sumSq := 0.0, 0.0
				for i := 0; i < r; i++ {
					mean += normed.At(i, j)
				}
				mean /= float64(r)
				for i := 0; i < r; i++ {
					diff := normed.At(i, j) - mean
					sumSq += diff * diff
				}
				std := math.Sqrt(sumSq / float64(r))
				if math.Abs(mean) > 1e-12 {
					t.Errorf("normalized column %d mean = %v, want 0", j, mean)
				}
				if math.Abs(std-1.0) > 1e-12 {
					t.Errorf("normalized column %d std = %v, want 1", j, std)
				}
			}
		}
	}
}

func TestNormalizerNotFitted(t *testing.T) {
	norm := NewNormalizer(false)
	X := mat.NewDense(2, 2, nil)

	if _, err := norm.NormalizeInput(X); err == nil {
		t.Error("NormalizeInput() before Fit should fail")
	} else {
		var nfErr *errors.NotFittedError
		if !errors.As(err, &nfErr) {
			t.Errorf("expected NotFittedError, got %v", err)
		}
	}

	if _, err := norm.DenormalizeOutput(mat.NewVecDense(2, nil)); err == nil {
		t.Error("DenormalizeOutput() before Fit should fail")
	}
}

func TestNormalizerFrozenAfterFit(t *testing.T) {
	train := mat.NewDense(3, 1, []float64{0.0, 1.0, 2.0})
	yTrain := mat.NewVecDense(3, []float64{0.0, 1.0, 2.0})

	norm := NewNormalizer(false)
	if err := norm.Fit(train, yTrain); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// 検証データの正規化は訓練データの統計量を使う
	valid := mat.NewDense(2, 1, []float64{10.0, 20.0})
	normed, err := norm.NormalizeInput(valid)
	if err != nil {
		t.Fatalf("NormalizeInput() error = %v", err)
	}

	wantScale := math.Sqrt(2.0 / 3.0)
	want0 := (10.0 - 1.0) / wantScale
	if math.Abs(normed.At(0, 0)-want0) > 1e-12 {
		t.Errorf("NormalizeInput(valid)[0] = %v, want %v (train statistics)", normed.At(0, 0), want0)
	}

	if norm.InputMean[0] != 1.0 {
		t.Errorf("InputMean mutated by NormalizeInput: %v", norm.InputMean[0])
	}

	if _, err := norm.NormalizeInput(mat.NewDense(2, 3, nil)); err == nil {
		t.Error("NormalizeInput() with wrong column count should fail")
	}
}
