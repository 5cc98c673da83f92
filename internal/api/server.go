package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/samcharles93/cudamm/internal/accel"
	"github.com/samcharles93/cudamm/internal/logger"
	"github.com/samcharles93/cudamm/internal/tensor"
)

type MatMulRequest struct {
	Kernel string    `json:"kernel"`
	M      int       `json:"m"`
	K      int       `json:"k"`
	N      int       `json:"n"`
	A      []float32 `json:"a"`
	B      []float32 `json:"b"`
}

type MatMulResponse struct {
	ID        string    `json:"id"`
	Kernel    string    `json:"kernel"`
	Shape     []int     `json:"shape"`
	Data      []float32 `json:"data"`
	ElapsedMS float64   `json:"elapsed_ms"`
}

const (
	// DefaultMaxOutput bounds m*n per request (64 MiB of float32).
	DefaultMaxOutput int64 = 1 << 24
	// DefaultBodyLimit bounds the request body in bytes.
	DefaultBodyLimit int64 = 64 << 20
)

// Server exposes a Multiplier over HTTP.
type Server struct {
	mul       accel.Multiplier
	caps      accel.Capability
	log       logger.Logger
	clock     func() time.Time
	maxOutput int64
	bodyLimit int64

	// The kernel library's thread safety is unknown, so only one request
	// talks to the device at a time.
	mu sync.Mutex
}

type ServerOption func(*Server)

// WithMaxOutput caps the output elements of a single request.
func WithMaxOutput(elems int64) ServerOption {
	return func(s *Server) { s.maxOutput = elems }
}

// WithBodyLimit caps the request body size in bytes.
func WithBodyLimit(bytes int64) ServerOption {
	return func(s *Server) { s.bodyLimit = bytes }
}

func NewServer(mul accel.Multiplier, caps accel.Capability, log logger.Logger, opts ...ServerOption) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{
		mul:       mul,
		caps:      caps,
		log:       log,
		clock:     time.Now,
		maxOutput: DefaultMaxOutput,
		bodyLimit: DefaultBodyLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/matmul", s.handleMatMul, middleware.BodyLimit(s.bodyLimit))
	e.GET("/v1/capabilities", s.handleCapabilities)
}

func (s *Server) handleCapabilities(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.caps)
}

func (s *Server) handleMatMul(c *echo.Context) error {
	req, err := decodeJSON[MatMulRequest](c.Request().Body)
	if err != nil {
		return writeMatMulError(c, err)
	}
	kind, err := accel.ParseKernel(req.Kernel)
	if err != nil {
		return writeBadRequest(c, err.Error(), "kernel")
	}

	if err := accel.CheckShape(req.M, req.K, req.N, s.maxOutput); err != nil {
		return writeMatMulError(c, err)
	}

	// Shapes are checked by the launcher; flat views keep its length check
	// authoritative.
	a := &tensor.Tensor{Data: req.A, Shape: []int{len(req.A)}}
	b := &tensor.Tensor{Data: req.B, Shape: []int{len(req.B)}}

	id := uuid.NewString()
	log := s.log.With("id", id, "kernel", string(kind))

	s.mu.Lock()
	start := s.clock()
	out, err := accel.Run(s.mul, kind, log, a, b, req.M, req.K, req.N)
	elapsed := s.clock().Sub(start)
	s.mu.Unlock()

	if err != nil {
		log.Warn("matmul failed", "error", err)
		return writeMatMulError(c, err)
	}
	log.Info("matmul", "m", req.M, "k", req.K, "n", req.N, "elapsed", elapsed)
	return c.JSON(http.StatusOK, MatMulResponse{
		ID:        id,
		Kernel:    string(kind),
		Shape:     out.Shape,
		Data:      out.Data,
		ElapsedMS: float64(elapsed.Microseconds()) / 1000,
	})
}
