package accel

import (
	"math"
	"time"

	"github.com/samcharles93/cudamm/internal/logger"
	"github.com/samcharles93/cudamm/internal/tensor"
)

// Multiplier is the stable surface shared by the CUDA launcher and the
// unavailable stub.
type Multiplier interface {
	MatMul(a, b *tensor.Tensor, m, k, n int) (*tensor.Tensor, error)
	MatMulCuBLAS(a, b *tensor.Tensor, m, k, n int) (*tensor.Tensor, error)
}

const (
	// MaxDim is the largest m, k or n accepted; the kernels take C ints.
	MaxDim = math.MaxInt32

	// DefaultMaxOutput bounds m*n unless overridden with WithMaxOutput.
	DefaultMaxOutput int64 = math.MaxInt32
)

// Launcher validates operands, allocates the output and calls through to a
// kernel. It holds no locks and adds no concurrency; callers sharing one
// device must serialise themselves if the kernel requires it.
//
// The launcher trusts the kernel to write all m*n outputs. It has no way to
// observe partial writes, so anything the kernel leaves untouched stays zero
// and any values it does write are returned unchanged.
type Launcher struct {
	custom    Kernel
	blas      Kernel
	log       logger.Logger
	maxOutput int64
}

type Option func(*Launcher)

func WithLogger(log logger.Logger) Option {
	return func(l *Launcher) {
		if log != nil {
			l.log = log
		}
	}
}

// WithMaxOutput caps the number of output elements a single call may allocate.
func WithMaxOutput(elems int64) Option {
	return func(l *Launcher) {
		if elems >= 0 {
			l.maxOutput = elems
		}
	}
}

// NewLauncher binds the custom and vendor BLAS kernels.
func NewLauncher(custom, blas Kernel, opts ...Option) *Launcher {
	l := &Launcher{
		custom: custom,
		blas:   blas,
		log:       logger.Discard(),
		maxOutput: DefaultMaxOutput,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MatMul computes a*b with the custom kernel.
func (l *Launcher) MatMul(a, b *tensor.Tensor, m, k, n int) (*tensor.Tensor, error) {
	return l.launch(l.custom, a, b, m, k, n)
}

// MatMulCuBLAS computes a*b with the vendor BLAS kernel.
func (l *Launcher) MatMulCuBLAS(a, b *tensor.Tensor, m, k, n int) (*tensor.Tensor, error) {
	return l.launch(l.blas, a, b, m, k, n)
}

func (l *Launcher) launch(kernel Kernel, a, b *tensor.Tensor, m, k, n int) (*tensor.Tensor, error) {
	if err := CheckShape(m, k, n, l.maxOutput); err != nil {
		return nil, err
	}
	aData, err := operand("A", a, m, k)
	if err != nil {
		return nil, err
	}
	bData, err := operand("B", b, k, n)
	if err != nil {
		return nil, err
	}
	out, err := tensor.Zeros(m, n)
	if err != nil {
		return nil, &LimitError{What: "output elements", Value: int64(m) * int64(n), Limit: l.maxOutput}
	}

	start := time.Now()
	kernel.MatMul(aData, bData, out.Data, m, k, n)
	l.log.Debug("matmul complete",
		"kernel", kernel.Name(),
		"m", m, "k", k, "n", n,
		"elapsed", time.Since(start),
	)
	return out, nil
}

// CheckShape rejects dimensions above MaxDim and outputs larger than
// maxOutput elements. Negative dimensions are left to the operand checks.
func CheckShape(m, k, n int, maxOutput int64) error {
	for _, d := range [...]struct {
		name string
		v    int
	}{{"m", m}, {"k", k}, {"n", n}} {
		if int64(d.v) > MaxDim {
			return &LimitError{What: "dimension " + d.name, Value: int64(d.v), Limit: MaxDim}
		}
	}
	if m >= 0 && n >= 0 {
		if elems := int64(m) * int64(n); elems > maxOutput {
			return &LimitError{What: "output elements", Value: elems, Limit: maxOutput}
		}
	}
	return nil
}

// operand returns t's buffer if it holds exactly rows*cols values.
func operand(name string, t *tensor.Tensor, rows, cols int) ([]float32, error) {
	var data []float32
	if t != nil {
		data = t.Data
	}
	want, err := tensor.Elems(rows, cols)
	if err != nil || len(data) != want {
		return nil, &SizeMismatchError{Operand: name, Got: len(data), Rows: rows, Cols: cols}
	}
	return data, nil
}
