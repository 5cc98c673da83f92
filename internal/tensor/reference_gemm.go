package tensor

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTileM = 32
	defaultTileN = 32
	defaultTileK = 16

	maxTileK = 64
)

func selectGemmTiles(k int) (int, int, int) {
	tk := defaultTileK
	switch {
	case k >= 192:
		tk = 32
	case k >= 96:
		tk = 24
	}
	return defaultTileM, defaultTileN, min(tk, maxTileK)
}

// Gemm computes c = a*b for row-major a (m x k), b (k x n) and c (m x n),
// overwriting c. Output rows are split across up to workers goroutines;
// workers <= 0 uses GOMAXPROCS.
func Gemm(c, a, b []float32, m, k, n, workers int) {
	if len(a) != m*k || len(b) != k*n || len(c) != m*n {
		panic("gemm: dimension mismatch")
	}
	if m == 0 || n == 0 {
		return
	}
	clear(c)
	if k == 0 {
		return
	}

	tm, tn, tk := selectGemmTiles(k)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	// Give every worker at least one full row tile.
	workers = min(workers, (m+tm-1)/tm)
	if workers <= 1 {
		gemmRangeRows(c, a, b, k, n, 0, m, tm, tn, tk)
		return
	}

	chunk := (m + workers - 1) / workers
	var g errgroup.Group
	for rs := 0; rs < m; rs += chunk {
		re := min(rs+chunk, m)
		g.Go(func() error {
			gemmRangeRows(c, a, b, k, n, rs, re, tm, tn, tk)
			return nil
		})
	}
	_ = g.Wait()
}

// gemmRangeRows accumulates rows [rs, re) of c from a blocked walk over k.
func gemmRangeRows(c, a, b []float32, k, n, rs, re, tm, tn, tk int) {
	for i0 := rs; i0 < re; i0 += tm {
		iMax := min(i0+tm, re)
		for k0 := 0; k0 < k; k0 += tk {
			kMax := min(k0+tk, k)
			for j0 := 0; j0 < n; j0 += tn {
				jMax := min(j0+tn, n)
				for i := i0; i < iMax; i++ {
					cRow := c[i*n+j0 : i*n+jMax]
					aRow := a[i*k : i*k+k]
					for kk := k0; kk < kMax; kk++ {
						av := aRow[kk]
						if av == 0 {
							continue
						}
						bRow := b[kk*n+j0 : kk*n+jMax]
						for j := range cRow {
							cRow[j] += av * bRow[j]
						}
					}
				}
			}
		}
	}
}
