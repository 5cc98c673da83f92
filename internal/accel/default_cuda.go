//go:build cuda && !darwin

package accel

import "github.com/samcharles93/cudamm/internal/accel/native"

const cudaEnabled = true

func newDefault(opts ...Option) Multiplier {
	return NewLauncher(native.Custom{}, native.CuBLAS{}, opts...)
}

// Devices returns the number of visible CUDA devices.
func Devices() (int, error) {
	return native.DeviceCount()
}
