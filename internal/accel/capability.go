package accel

import (
	"runtime"

	"github.com/samcharles93/cudamm/internal/logger"
	"github.com/samcharles93/cudamm/internal/tensor"
)

// Capability describes what this binary was built with.
type Capability struct {
	CUDA     bool   `json:"cuda" yaml:"cuda"`
	Platform string `json:"platform" yaml:"platform"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Capabilities reports the build-time accelerator selection.
func Capabilities() Capability {
	c := Capability{
		CUDA:     cudaEnabled,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if !cudaEnabled {
		c.Reason = ErrUnavailable.Error()
	}
	return c
}

// Default returns the Multiplier linked into this build.
func Default(opts ...Option) Multiplier {
	return newDefault(opts...)
}

// Unavailable returns the stub Multiplier used when CUDA is not linked.
func Unavailable() Multiplier {
	return unavailable{}
}

type unavailable struct{}

func (unavailable) MatMul(_, _ *tensor.Tensor, _, _, _ int) (*tensor.Tensor, error) {
	return nil, ErrUnavailable
}

func (unavailable) MatMulCuBLAS(_, _ *tensor.Tensor, _, _, _ int) (*tensor.Tensor, error) {
	return nil, ErrUnavailable
}

// NewReferenceLauncher returns a Launcher whose both entry points run the
// CPU reference kernel.
func NewReferenceLauncher(log logger.Logger) *Launcher {
	ref := Reference{}
	return NewLauncher(ref, ref, WithLogger(log))
}

// Run dispatches one multiplication by kind. KindReference ignores mul and
// runs on the CPU regardless of build.
func Run(mul Multiplier, kind KernelKind, log logger.Logger, a, b *tensor.Tensor, m, k, n int) (*tensor.Tensor, error) {
	switch kind {
	case KindCuBLAS:
		return mul.MatMulCuBLAS(a, b, m, k, n)
	case KindReference:
		return NewReferenceLauncher(log).MatMul(a, b, m, k, n)
	default:
		return mul.MatMul(a, b, m, k, n)
	}
}
