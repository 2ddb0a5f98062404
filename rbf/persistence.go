package rbf

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/NLawrenz/localreg/core/model"
	"github.com/NLawrenz/localreg/pkg/errors"
	"github.com/NLawrenz/localreg/preprocessing"
)

// netSnapshot は保存される学習済みモデルの全状態
//
// カーネルは名前で記録される。組み込みカーネル以外を使う場合、
// 復元前にRegisterKernelで同名のカーネルを登録すること。
type netSnapshot struct {
	InputMean   []float64
	InputScale  []float64
	OutputMean  float64
	OutputScale float64
	NFeatures   int
	KeepAspect  bool

	NumCenters int
	Centers    []float64
	Coeffs     []float64
	Radius     float64
	Residual   float64
	Kernel     string
	Measure    string
}

// Save は学習済みモデルをファイルに保存する
//
// 正規化統計量、中心、重み、半径、カーネル名が保存され、
// Loadで完全に復元できる。未学習のモデルは保存できない。
func (net *RBFNet) Save(filename string) error {
	snap, err := net.snapshot()
	if err != nil {
		return err
	}
	return model.SaveModel(snap, filename)
}

// Load はSaveで保存されたモデルを復元する
//
// 復元後のモデルは学習済みとなり、すぐにPredictに使える。
func (net *RBFNet) Load(filename string) error {
	var snap netSnapshot
	if err := model.LoadModel(&snap, filename); err != nil {
		return err
	}
	return net.restore(&snap)
}

func (net *RBFNet) snapshot() (*netSnapshot, error) {
	if !net.IsFitted() {
		return nil, errors.NewNotFittedError("RBFNet", "Save")
	}

	k, d := net.Centers_.Dims()
	centers := make([]float64, 0, k*d)
	for i := 0; i < k; i++ {
		centers = append(centers, net.Centers_.RawRowView(i)...)
	}

	coeffs := make([]float64, net.Coeffs_.Len())
	copy(coeffs, net.Coeffs_.RawVector().Data)

	inputMean := make([]float64, len(net.norm.InputMean))
	copy(inputMean, net.norm.InputMean)
	inputScale := make([]float64, len(net.norm.InputScale))
	copy(inputScale, net.norm.InputScale)

	return &netSnapshot{
		InputMean:   inputMean,
		InputScale:  inputScale,
		OutputMean:  net.norm.OutputMean,
		OutputScale: net.norm.OutputScale,
		NFeatures:   net.norm.NFeatures,
		KeepAspect:  net.norm.KeepAspect,
		NumCenters:  k,
		Centers:     centers,
		Coeffs:      coeffs,
		Radius:      net.Radius_,
		Residual:    net.Residual_,
		Kernel:      net.kernel.Name(),
		Measure:     net.measureName,
	}, nil
}

func (net *RBFNet) restore(snap *netSnapshot) error {
	kernel, err := KernelByName(snap.Kernel)
	if err != nil {
		return err
	}
	if snap.NFeatures < 1 || snap.NumCenters < 1 {
		return errors.NewValueError("RBFNet.Load", "snapshot has no centers or features")
	}
	if len(snap.Centers) != snap.NumCenters*snap.NFeatures {
		return errors.NewDimensionError("RBFNet.Load", snap.NumCenters*snap.NFeatures, len(snap.Centers), 0)
	}
	if len(snap.Coeffs) != snap.NumCenters {
		return errors.NewDimensionError("RBFNet.Load", snap.NumCenters, len(snap.Coeffs), 0)
	}
	if len(snap.InputMean) != snap.NFeatures || len(snap.InputScale) != snap.NFeatures {
		return errors.NewDimensionError("RBFNet.Load", snap.NFeatures, len(snap.InputMean), 1)
	}
	if snap.Radius <= 0 || math.IsNaN(snap.Radius) {
		return errors.NewValidationError("radius", "must be positive", snap.Radius)
	}
	if err := errors.CheckNumericalStability("RBFNet.Load", snap.Coeffs, 0); err != nil {
		return err
	}

	norm := preprocessing.NewNormalizer(snap.KeepAspect)
	norm.InputMean = snap.InputMean
	norm.InputScale = snap.InputScale
	norm.OutputMean = snap.OutputMean
	norm.OutputScale = snap.OutputScale
	norm.NFeatures = snap.NFeatures
	norm.SetFitted()

	net.norm = norm
	net.keepAspect = snap.KeepAspect
	net.kernel = kernel
	if snap.Measure != "" {
		net.measureName = snap.Measure
	}
	net.numCenters = snap.NumCenters
	net.Centers_ = mat.NewDense(snap.NumCenters, snap.NFeatures, snap.Centers)
	net.Coeffs_ = mat.NewVecDense(snap.NumCenters, snap.Coeffs)
	net.Radius_ = snap.Radius
	net.Residual_ = snap.Residual
	net.SetFitted()
	return nil
}
