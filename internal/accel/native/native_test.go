//go:build cuda && !darwin

package native

import (
	"math"
	"testing"
)

func requireDevice(t *testing.T) {
	t.Helper()
	count, err := DeviceCount()
	if err != nil {
		t.Skipf("DeviceCount: %v", err)
	}
	if count < 1 {
		t.Skip("no cuda device available")
	}
}

func checkSmallGemm(t *testing.T, name string, matmul func(a, b, c []float32, m, k, n int)) {
	t.Helper()
	a := []float32{1, 2, 3, 4, 5, 6}
	b := []float32{1, 0, 0, 1, 1, 0}
	c := make([]float32, 4)
	matmul(a, b, c, 2, 3, 2)

	want := []float32{4, 2, 10, 5}
	for i := range want {
		if math.Abs(float64(c[i]-want[i])) > 1e-4 {
			t.Fatalf("%s: c[%d] got %v want %v (c=%v)", name, i, c[i], want[i], c)
		}
	}
}

func TestCustomKernelSmall(t *testing.T) {
	requireDevice(t)
	checkSmallGemm(t, "custom", Custom{}.MatMul)
}

func TestCuBLASKernelSmall(t *testing.T) {
	requireDevice(t)
	checkSmallGemm(t, "cublas", CuBLAS{}.MatMul)
}

func TestEmptyOutputSkipsLaunch(t *testing.T) {
	// Must not dereference anything when there is nothing to write.
	Custom{}.MatMul(nil, nil, nil, 0, 0, 0)
	CuBLAS{}.MatMul(nil, nil, nil, 0, 4, 0)
}

func TestCintRejectsWideDimensions(t *testing.T) {
	if got := cint(math.MaxInt32); int64(got) != math.MaxInt32 {
		t.Fatalf("cint(MaxInt32): got %d", got)
	}
	for _, v := range []int{-1, int(int64(math.MaxInt32) + 1)} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("cint(%d) did not panic", v)
				}
			}()
			cint(v)
		}()
	}
}
