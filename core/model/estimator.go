// Package model は推定器の共通インターフェースと学習状態の管理を提供する
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Model は教師あり学習モデルの基本インターフェース
type Model interface {
	Fitter
	Predictor
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}

// BaseEstimator は推定器に埋め込んで学習状態を管理する
//
// 段階的な学習（正規化 → 中心選択 → 重み決定）を持つ推定器では、
// 途中の段階をやり直すと後続の結果が無効になる。各推定器は最終段階の
// 成功時にSetFittedを、途中段階のやり直し時にResetを呼び、
// 予測系の操作はIsFittedで前提を確認する。
type BaseEstimator struct {
	fitted bool
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.fitted
}

// SetFitted はモデルを学習済みにする
func (e *BaseEstimator) SetFitted() {
	e.fitted = true
}

// Reset はモデルを未学習状態に戻す
func (e *BaseEstimator) Reset() {
	e.fitted = false
}
