package rbf

import (
	"math"

	"github.com/NLawrenz/localreg/pkg/errors"
)

// Kernel は放射基底関数を表す
//
// 中心cと半径rに対して kernel(‖x-c‖/r) の形で使われるスカラー関数で、
// |t|の増加とともに減衰することが期待される。名前を持つため、学習済みの
// モデルを保存する際はカーネル本体ではなく名前が記録される。
type Kernel struct {
	name string
	fn   func(t float64) float64
}

// NewKernel は独自のカーネルを作成する
// 名前が登録済みカーネルと重ならない場合、保存したモデルの復元には
// 同じ名前のカーネルをRegisterKernelで登録しておく必要がある
func NewKernel(name string, fn func(t float64) float64) Kernel {
	return Kernel{name: name, fn: fn}
}

// Name はカーネルの登録名を返す
func (k Kernel) Name() string {
	return k.name
}

// Eval はカーネルを評価する
func (k Kernel) Eval(t float64) float64 {
	return k.fn(t)
}

// 組み込みカーネル
var (
	// Gaussian はガウス型カーネル exp(-0.5 t²)（デフォルト）
	Gaussian = NewKernel("gaussian", func(t float64) float64 {
		return math.Exp(-0.5 * t * t)
	})

	// InverseQuadratic は逆二次カーネル 1/(1+t²)
	InverseQuadratic = NewKernel("inverse_quadratic", func(t float64) float64 {
		return 1.0 / (1.0 + t*t)
	})

	// InverseMultiquadric は逆多重二次カーネル 1/√(1+t²)
	InverseMultiquadric = NewKernel("inverse_multiquadric", func(t float64) float64 {
		return 1.0 / math.Sqrt(1.0+t*t)
	})
)

var kernelsByName = map[string]Kernel{
	Gaussian.name:            Gaussian,
	InverseQuadratic.name:    InverseQuadratic,
	InverseMultiquadric.name: InverseMultiquadric,
}

// RegisterKernel はカーネルを名前で登録する
// 保存済みモデルを独自カーネルで復元する場合、Loadの前に呼び出す
func RegisterKernel(k Kernel) {
	kernelsByName[k.name] = k
}

// KernelByName は登録名からカーネルを取得する
// 未知の名前はValidationErrorになる
func KernelByName(name string) (Kernel, error) {
	k, ok := kernelsByName[name]
	if !ok {
		return Kernel{}, errors.NewValidationError("kernel", "unknown kernel", name)
	}
	return k, nil
}
