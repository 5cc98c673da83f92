//go:build !cuda || darwin

package accel

const cudaEnabled = false

func newDefault(_ ...Option) Multiplier {
	return Unavailable()
}

func Devices() (int, error) {
	return 0, ErrUnavailable
}
