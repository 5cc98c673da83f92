//go:build cuda && !darwin

// Package native binds the statically linked mat_mul_cuda library.
//
// Both entry points are synchronous and report nothing: a device fault inside
// them is not observable from Go and typically aborts the process.
package native

/*
#cgo LDFLAGS: -L${SRCDIR}/lib -lmat_mul_cuda -lcudart -lcublas -lstdc++

// Forward declarations so the build does not need CUDA headers; the linker
// still requires libcudart and libcublas.
typedef int cudaError_t;

extern const char* cudaGetErrorString(cudaError_t err);
extern cudaError_t cudaGetDeviceCount(int* count);

extern void launch_mat_mul(float* a, float* b, float* c, int m, int k, int n);
extern void launch_cuBLAS_mat_mul(float* a, float* b, float* c, int m, int k, int n);

static const char* cudammCudaGetErrorString(cudaError_t err) {
	return cudaGetErrorString(err);
}

static int cudammCudaGetDeviceCount(int* out) {
	cudaError_t err = cudaGetDeviceCount(out);
	return (int)err;
}
*/
import "C"

import (
	"fmt"
	"math"
	"unsafe"
)

// Custom runs the hand-written CUDA GEMM kernel.
type Custom struct{}

func (Custom) Name() string {
	return "custom"
}

func (Custom) MatMul(a, b, c []float32, m, k, n int) {
	if len(c) == 0 {
		return
	}
	C.launch_mat_mul(ptr(a), ptr(b), ptr(c), cint(m), cint(k), cint(n))
}

// CuBLAS runs the cuBLAS SGEMM path.
type CuBLAS struct{}

func (CuBLAS) Name() string {
	return "cublas"
}

func (CuBLAS) MatMul(a, b, c []float32, m, k, n int) {
	if len(c) == 0 {
		return
	}
	C.launch_cuBLAS_mat_mul(ptr(a), ptr(b), ptr(c), cint(m), cint(k), cint(n))
}

// ptr returns a C view of s. The library does not retain it past the call,
// which keeps Go memory within cgo pointer-passing rules.
func ptr(s []float32) *C.float {
	if len(s) == 0 {
		return nil
	}
	return (*C.float)(unsafe.Pointer(unsafe.SliceData(s)))
}

// cint converts a dimension for the C boundary. accel.Launcher rejects
// dimensions above MaxInt32 first, so this only trips on direct misuse.
func cint(v int) C.int {
	if v < 0 || int64(v) > math.MaxInt32 {
		panic(fmt.Sprintf("native: dimension %d does not fit a C int", v))
	}
	return C.int(v)
}

func DeviceCount() (int, error) {
	var count C.int
	if err := cudaErr(C.cudammCudaGetDeviceCount(&count)); err != nil {
		return 0, err
	}
	return int(count), nil
}

func cudaErr(code C.int) error {
	if code == 0 {
		return nil
	}
	msg := C.GoString(C.cudammCudaGetErrorString(C.cudaError_t(code)))
	return fmt.Errorf("cuda runtime error %d: %s", int(code), msg)
}
