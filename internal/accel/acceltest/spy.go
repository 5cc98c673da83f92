// Package acceltest provides kernel doubles for exercising accel.Launcher
// without a device.
package acceltest

import (
	"sync"

	"github.com/samcharles93/cudamm/internal/tensor"
)

// Call records the arguments of one MatMul invocation.
type Call struct {
	ALen, BLen, CLen int
	M, K, N          int
}

// Spy is a kernel that records every call. When Compute is set it fills the
// output with the exact GEMM result; otherwise it leaves the output untouched.
type Spy struct {
	Label   string
	Compute bool

	mu    sync.Mutex
	calls []Call
}

func NewSpy(label string, compute bool) *Spy {
	return &Spy{Label: label, Compute: compute}
}

func (s *Spy) Name() string {
	return s.Label
}

func (s *Spy) MatMul(a, b, c []float32, m, k, n int) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{ALen: len(a), BLen: len(b), CLen: len(c), M: m, K: k, N: n})
	s.mu.Unlock()
	if s.Compute {
		tensor.Gemm(c, a, b, m, k, n, 1)
	}
}

func (s *Spy) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Garbage is a kernel that writes a fixed value into every output slot.
type Garbage struct {
	Value float32
}

func (Garbage) Name() string {
	return "garbage"
}

func (g Garbage) MatMul(_, _, c []float32, _, _, _ int) {
	for i := range c {
		c[i] = g.Value
	}
}
