// Copyright 2024 The gemmbitserial Authors. SPDX-License-Identifier: Apache-2.0

package gemm

import (
	"runtime"
	"sync"

	"github.com/liuguoyou/gemmbitserial/workerpool"
)

// MinParallelOps is the minimum lhsRows*depth*rhsRows product before
// ParallelGEMM spawns workers; below it, goroutine overhead dominates
// the popcount stream.
const MinParallelOps = 64 * 64 * 64

// ParallelGEMM computes ctx.Res = LHS * RHS^T with LHS row tiles
// dispatched across GOMAXPROCS workers. Tiles write disjoint stripes
// of the result, so no synchronisation beyond the final barrier is
// needed; the operands are immutable during the run. The result is
// identical to GEMM.
func ParallelGEMM(ctx *Context) {
	numLHSTiles := ctx.LHS.RowsA / ctx.LHSBlock
	if numLHSTiles == 1 || ctx.LHS.Rows*ctx.LHS.Cols*ctx.RHS.Rows < MinParallelOps {
		GEMM(ctx)
		return
	}

	kern := CurrentBackend().Kernel
	corr := newCorrections(ctx)
	numWorkers := min(runtime.GOMAXPROCS(0), numLHSTiles)

	// Work queue of LHS tile indices; workers own their accumulator.
	work := make(chan int, numLHSTiles)
	for lt := 0; lt < numLHSTiles; lt++ {
		work <- lt
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc := make([]int32, ctx.LHSBlock*ctx.RHSBlock)
			for lt := range work {
				gemmTiles(ctx, kern, corr, lt, lt+1, acc)
			}
		}()
	}
	wg.Wait()
}

// GEMMWithPool is like ParallelGEMM but reuses a persistent worker
// pool, avoiding per-call goroutine spawn overhead when many
// multiplications run back to back (layer stacks, batched inference).
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	for _, layer := range layers {
//	    gemm.GEMMWithPool(pool, layer.Ctx)
//	}
func GEMMWithPool(pool *workerpool.Pool, ctx *Context) {
	if pool == nil {
		ParallelGEMM(ctx)
		return
	}
	numLHSTiles := ctx.LHS.RowsA / ctx.LHSBlock
	if numLHSTiles == 1 || ctx.LHS.Rows*ctx.LHS.Cols*ctx.RHS.Rows < MinParallelOps {
		GEMM(ctx)
		return
	}

	kern := CurrentBackend().Kernel
	corr := newCorrections(ctx)
	pool.ParallelFor(numLHSTiles, func(start, end int) {
		acc := make([]int32, ctx.LHSBlock*ctx.RHSBlock)
		gemmTiles(ctx, kern, corr, start, end, acc)
	})
}
