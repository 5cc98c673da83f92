//go:build !cuda || darwin

package accel

import (
	"errors"
	"testing"
)

func TestDefaultIsStubWithoutCUDA(t *testing.T) {
	t.Parallel()
	mul := Default()
	_, err := mul.MatMulCuBLAS(flat(6), flat(6), 2, 3, 2)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := Devices(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Devices: expected ErrUnavailable, got %v", err)
	}
}
