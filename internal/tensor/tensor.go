package tensor

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrNegativeDim   = errors.New("negative dimension for tensor")
	ErrShapeMismatch = errors.New("data length does not match shape")
	ErrTooLarge      = errors.New("tensor too large")
)

// Tensor is a dense row-major buffer of float32 values.
//
// len(Data) always equals the product of Shape. Tensors returned by this
// package own their Data; callers may mutate it freely.
type Tensor struct {
	Data  []float32
	Shape []int
}

// New2D wraps data as a rows x cols tensor without copying.
func New2D(data []float32, rows, cols int) (*Tensor, error) {
	want, err := Elems(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != want {
		return nil, fmt.Errorf("%w: got %d values for %dx%d", ErrShapeMismatch, len(data), rows, cols)
	}
	return &Tensor{Data: data, Shape: []int{rows, cols}}, nil
}

// Zeros allocates a zero-initialised rows x cols tensor.
func Zeros(rows, cols int) (*Tensor, error) {
	want, err := Elems(rows, cols)
	if err != nil {
		return nil, err
	}
	return &Tensor{Data: make([]float32, want), Shape: []int{rows, cols}}, nil
}

// Elems returns rows*cols, rejecting negative or overflowing shapes.
func Elems(rows, cols int) (int, error) {
	if rows < 0 || cols < 0 {
		return 0, ErrNegativeDim
	}
	n := rows * cols
	if rows != 0 && n/rows != cols {
		return 0, ErrTooLarge
	}
	return n, nil
}

func (t *Tensor) Len() int {
	return len(t.Data)
}

// Rows returns the leading dimension, or 0 for a rank-0 tensor.
func (t *Tensor) Rows() int {
	if len(t.Shape) == 0 {
		return 0
	}
	return t.Shape[0]
}

// Cols returns the trailing dimension of a 2D tensor.
func (t *Tensor) Cols() int {
	if len(t.Shape) < 2 {
		return 1
	}
	return t.Shape[len(t.Shape)-1]
}

// At returns element (i, j) of a 2D tensor.
func (t *Tensor) At(i, j int) float32 {
	return t.Data[i*t.Cols()+j]
}

// Row returns a view of row i.
func (t *Tensor) Row(i int) []float32 {
	c := t.Cols()
	return t.Data[i*c : (i+1)*c]
}

func (t *Tensor) String() string {
	return fmt.Sprintf("tensor%v", t.Shape)
}

// Random returns a rows x cols tensor of values roughly in (-1, 1),
// deterministic for a given seed.
func Random(rows, cols int, seed int64) (*Tensor, error) {
	t, err := Zeros(rows, cols)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range t.Data {
		t.Data[i] = rng.Float32()*2 - 1
	}
	return t, nil
}

// MaxAbsDiff returns the largest element-wise |a-b|. The slices must have
// equal length.
func MaxAbsDiff(a, b []float32) float64 {
	if len(a) != len(b) {
		panic("max abs diff: length mismatch")
	}
	var maxAbs float64
	for i := range a {
		d := float64(a[i] - b[i])
		if d < 0 {
			d = -d
		}
		if d > maxAbs {
			maxAbs = d
		}
	}
	return maxAbs
}
