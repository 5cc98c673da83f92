package accel

import (
	"fmt"
	"strings"

	"github.com/samcharles93/cudamm/internal/tensor"
)

// Kernel is a single GEMM entry point on the far side of the launcher.
//
// MatMul writes a*b into c. a is m x k, b is k x n and c is m x n, all
// row-major; the launcher guarantees the lengths before calling. The slices
// are views: implementations must not retain them after returning and must
// not report failure, which is why MatMul has no error result.
type Kernel interface {
	Name() string
	MatMul(a, b, c []float32, m, k, n int)
}

// KernelKind selects which entry point an operation runs.
type KernelKind string

const (
	KindCustom    KernelKind = "custom"
	KindCuBLAS    KernelKind = "cublas"
	KindReference KernelKind = "reference"
)

func ParseKernel(name string) (KernelKind, error) {
	kind := KernelKind(strings.ToLower(strings.TrimSpace(name)))
	switch kind {
	case "":
		return KindCustom, nil
	case KindCustom, KindCuBLAS, KindReference:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown kernel %q (expected custom, cublas, or reference)", name)
	}
}

// Reference is a CPU kernel producing exact row-major GEMM results. It is
// available on every build.
type Reference struct {
	// Workers bounds the goroutines used; 0 means GOMAXPROCS.
	Workers int
}

func (Reference) Name() string {
	return string(KindReference)
}

func (r Reference) MatMul(a, b, c []float32, m, k, n int) {
	tensor.Gemm(c, a, b, m, k, n, r.Workers)
}
