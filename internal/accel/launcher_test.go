package accel

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/samcharles93/cudamm/internal/accel/acceltest"
	"github.com/samcharles93/cudamm/internal/logger"
	"github.com/samcharles93/cudamm/internal/tensor"
)

func mustTensor(t *testing.T, data []float32, rows, cols int) *tensor.Tensor {
	t.Helper()
	x, err := tensor.New2D(data, rows, cols)
	if err != nil {
		t.Fatalf("New2D(%dx%d): %v", rows, cols, err)
	}
	return x
}

// flat builds an unshaped tensor so length checks see the raw buffer only.
func flat(n int) *tensor.Tensor {
	return &tensor.Tensor{Data: make([]float32, n), Shape: []int{n}}
}

type launchFunc func(l *Launcher, a, b *tensor.Tensor, m, k, n int) (*tensor.Tensor, error)

var entryPoints = []struct {
	name   string
	launch launchFunc
	custom bool
}{
	{"custom", (*Launcher).MatMul, true},
	{"cublas", (*Launcher).MatMulCuBLAS, false},
}

func TestLauncherReferenceScenario(t *testing.T) {
	t.Parallel()
	for _, ep := range entryPoints {
		t.Run(ep.name, func(t *testing.T) {
			t.Parallel()
			l := NewLauncher(Reference{}, Reference{})
			a := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
			b := mustTensor(t, []float32{1, 0, 0, 1, 1, 0}, 3, 2)

			c, err := ep.launch(l, a, b, 2, 3, 2)
			if err != nil {
				t.Fatalf("launch: %v", err)
			}
			if c.Rows() != 2 || c.Cols() != 2 || c.Len() != 4 {
				t.Fatalf("unexpected shape %v len=%d", c.Shape, c.Len())
			}
			want := []float32{4, 2, 10, 5}
			for i := range want {
				if c.Data[i] != want[i] {
					t.Fatalf("c[%d]: got %v want %v", i, c.Data[i], want[i])
				}
			}
		})
	}
}

func TestLauncherRoutesToSelectedKernel(t *testing.T) {
	t.Parallel()
	for _, ep := range entryPoints {
		t.Run(ep.name, func(t *testing.T) {
			t.Parallel()
			custom := acceltest.NewSpy("custom", false)
			blas := acceltest.NewSpy("cublas", false)
			l := NewLauncher(custom, blas)

			if _, err := ep.launch(l, flat(4*5), flat(5*3), 4, 5, 3); err != nil {
				t.Fatalf("launch: %v", err)
			}

			called, idle := blas, custom
			if ep.custom {
				called, idle = custom, blas
			}
			if got := len(idle.Calls()); got != 0 {
				t.Fatalf("unselected kernel called %d times", got)
			}
			calls := called.Calls()
			if len(calls) != 1 {
				t.Fatalf("selected kernel called %d times, want 1", len(calls))
			}
			want := acceltest.Call{ALen: 20, BLen: 15, CLen: 12, M: 4, K: 5, N: 3}
			if calls[0] != want {
				t.Fatalf("call: got %+v want %+v", calls[0], want)
			}
		})
	}
}

func TestLauncherSizeMismatchSkipsKernel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		a, b    *tensor.Tensor
		m, k, n int
		operand string
	}{
		{"a short", flat(5), flat(6), 2, 3, 2, "A"},
		{"a long", flat(7), flat(6), 2, 3, 2, "A"},
		{"b short", flat(6), flat(5), 2, 3, 2, "B"},
		{"a nil", nil, flat(6), 2, 3, 2, "A"},
		{"negative dim", flat(0), flat(0), -1, 0, 2, "A"},
	}
	for _, ep := range entryPoints {
		for _, tc := range cases {
			t.Run(ep.name+"/"+tc.name, func(t *testing.T) {
				t.Parallel()
				spy := acceltest.NewSpy("spy", true)
				l := NewLauncher(spy, spy)

				out, err := ep.launch(l, tc.a, tc.b, tc.m, tc.k, tc.n)
				if out != nil {
					t.Fatalf("expected nil tensor, got %v", out)
				}
				if !errors.Is(err, ErrSizeMismatch) {
					t.Fatalf("expected ErrSizeMismatch, got %v", err)
				}
				var sm *SizeMismatchError
				if !errors.As(err, &sm) || sm.Operand != tc.operand {
					t.Fatalf("expected mismatch on %s, got %v", tc.operand, err)
				}
				if IsFatal(err) {
					t.Fatalf("size mismatch must not be fatal: %v", err)
				}
				if got := len(spy.Calls()); got != 0 {
					t.Fatalf("kernel called %d times after mismatch", got)
				}
			})
		}
	}
}

func TestLauncherSizeMismatchMessage(t *testing.T) {
	t.Parallel()
	l := NewLauncher(Reference{}, Reference{})
	_, err := l.MatMul(flat(5), flat(6), 2, 3, 2)
	if err == nil || !strings.Contains(err.Error(), "matrix A size mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = l.MatMulCuBLAS(flat(6), flat(7), 2, 3, 2)
	if err == nil || !strings.Contains(err.Error(), "matrix B size mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLauncherZeroInitialisesOutput(t *testing.T) {
	t.Parallel()
	spy := acceltest.NewSpy("noop", false)
	l := NewLauncher(spy, spy)
	c, err := l.MatMul(flat(6), flat(6), 2, 3, 2)
	if err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	for i, v := range c.Data {
		if v != 0 {
			t.Fatalf("c[%d]: got %v want 0", i, v)
		}
	}
}

func TestLauncherPassesKernelOutputThrough(t *testing.T) {
	t.Parallel()
	nan := float32(math.NaN())
	l := NewLauncher(acceltest.Garbage{Value: nan}, acceltest.Garbage{Value: 42})

	c, err := l.MatMul(flat(6), flat(6), 2, 3, 2)
	if err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	for i, v := range c.Data {
		if !math.IsNaN(float64(v)) {
			t.Fatalf("c[%d]: got %v want NaN", i, v)
		}
	}
	c, err = l.MatMulCuBLAS(flat(6), flat(6), 2, 3, 2)
	if err != nil {
		t.Fatalf("MatMulCuBLAS: %v", err)
	}
	if c.Data[3] != 42 {
		t.Fatalf("c[3]: got %v want 42", c.Data[3])
	}
}

func TestLauncherEmptyShapes(t *testing.T) {
	t.Parallel()
	spy := acceltest.NewSpy("spy", true)
	l := NewLauncher(spy, spy)
	c, err := l.MatMul(flat(0), flat(0), 0, 5, 0)
	if err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	if c.Len() != 0 || c.Rows() != 0 || c.Cols() != 0 {
		t.Fatalf("unexpected result %v", c)
	}
}

type limitCase struct {
	name    string
	m, k, n int
	opts    []Option
}

func TestLauncherRejectsOversizedOutput(t *testing.T) {
	t.Parallel()
	cases := []limitCase{
		// k=0 makes both operands validly empty while m*n stays enormous.
		{"empty operands huge output", 1 << 20, 0, 1 << 20, nil},
		{"custom cap", 2, 0, 2, []Option{WithMaxOutput(3)}},
	}
	if huge := int(^uint(0) >> 1); huge > MaxDim {
		cases = append(cases,
			limitCase{"m beyond c int", huge, 0, 1, nil},
			limitCase{"k beyond c int", 0, huge, 0, nil},
		)
	}
	for _, ep := range entryPoints {
		for _, tc := range cases {
			t.Run(ep.name+"/"+tc.name, func(t *testing.T) {
				t.Parallel()
				spy := acceltest.NewSpy("spy", true)
				l := NewLauncher(spy, spy, tc.opts...)

				out, err := ep.launch(l, flat(0), flat(0), tc.m, tc.k, tc.n)
				if out != nil {
					t.Fatalf("expected nil tensor, got %v", out)
				}
				if !errors.Is(err, ErrTooLarge) {
					t.Fatalf("expected ErrTooLarge, got %v", err)
				}
				if IsFatal(err) || errors.Is(err, ErrSizeMismatch) {
					t.Fatalf("limit error misclassified: %v", err)
				}
				if got := len(spy.Calls()); got != 0 {
					t.Fatalf("kernel called %d times after limit error", got)
				}
			})
		}
	}
}

func TestCheckShape(t *testing.T) {
	t.Parallel()
	if err := CheckShape(MaxDim, 0, 0, DefaultMaxOutput); err != nil {
		t.Fatalf("MaxDim itself must pass: %v", err)
	}
	if err := CheckShape(4, 4, 4, 16); err != nil {
		t.Fatalf("output at the cap must pass: %v", err)
	}
	var le *LimitError
	if err := CheckShape(4, 4, 5, 16); !errors.As(err, &le) || le.Value != 20 || le.Limit != 16 {
		t.Fatalf("expected output LimitError 20/16, got %v", err)
	}
	if err := CheckShape(-1, 3, 2, 16); err != nil {
		t.Fatalf("negative dims are left to operand checks, got %v", err)
	}
}

func TestLauncherLogsAtDebug(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logger.JSON(&buf, slog.LevelDebug)
	l := NewLauncher(Reference{}, Reference{}, WithLogger(log))
	if _, err := l.MatMul(flat(6), flat(6), 2, 3, 2); err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"kernel":"reference"`) || !strings.Contains(out, `"m":2`) {
		t.Fatalf("missing debug record: %s", out)
	}
}

func TestRunReferenceIgnoresMultiplier(t *testing.T) {
	t.Parallel()
	a := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := mustTensor(t, []float32{1, 0, 0, 1, 1, 0}, 3, 2)
	c, err := Run(Unavailable(), KindReference, logger.Discard(), a, b, 2, 3, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.At(1, 0) != 10 {
		t.Fatalf("c[1,0]: got %v want 10", c.At(1, 0))
	}
}

func TestRunDispatchesByKind(t *testing.T) {
	t.Parallel()
	custom := acceltest.NewSpy("custom", false)
	blas := acceltest.NewSpy("cublas", false)
	l := NewLauncher(custom, blas)

	if _, err := Run(l, KindCuBLAS, nil, flat(1), flat(1), 1, 1, 1); err != nil {
		t.Fatalf("Run cublas: %v", err)
	}
	if _, err := Run(l, KindCustom, nil, flat(1), flat(1), 1, 1, 1); err != nil {
		t.Fatalf("Run custom: %v", err)
	}
	if len(custom.Calls()) != 1 || len(blas.Calls()) != 1 {
		t.Fatalf("calls: custom=%d cublas=%d", len(custom.Calls()), len(blas.Calls()))
	}
}

func TestParseKernel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  KernelKind
		ok    bool
	}{
		{"", KindCustom, true},
		{"custom", KindCustom, true},
		{" CuBLAS ", KindCuBLAS, true},
		{"reference", KindReference, true},
		{"tensorrt", "", false},
	}
	for _, tc := range tests {
		got, err := ParseKernel(tc.input)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("ParseKernel(%q): got %q, %v", tc.input, got, err)
		}
	}
}
