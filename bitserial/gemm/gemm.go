// Copyright 2025 gemmbitserial Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gemm

import (
	"math/bits"

	"github.com/liuguoyou/gemmbitserial/bitserial"
)

// GEMM computes ctx.Res = LHS * RHS^T single-threaded with the active
// back-end's micro-kernel. Both operands must already be imported;
// they are only read. Each result cell accumulates bit-plane pair
// contributions with bL ascending then bR ascending.
func GEMM(ctx *Context) {
	kern := CurrentBackend().Kernel
	corr := newCorrections(ctx)
	acc := make([]int32, ctx.LHSBlock*ctx.RHSBlock)
	numLHSTiles := ctx.LHS.RowsA / ctx.LHSBlock
	gemmTiles(ctx, kern, corr, 0, numLHSTiles, acc)
}

// correction selects the post-accumulation transform that converts raw
// weighted popcounts into signed sums when an operand is bipolar.
type correction int

const (
	corrNone correction = iota
	corrBipolarBipolar
	corrBipolarLHS // lhs bipolar, rhs regular
	corrBipolarRHS // rhs bipolar, lhs regular
)

// corrections carries the precomputed per-row sums for the bipolar
// paths, so no operand is re-scanned per result cell.
type corrections struct {
	kind correction

	// Bipolar x bipolar: per-row popcounts of each side.
	lhsCounts, rhsCounts []int32

	// Mixed: bit-weighted per-row value sums of the regular side.
	regularSums []int32
}

func newCorrections(ctx *Context) *corrections {
	c := &corrections{kind: corrNone}
	switch {
	case ctx.IsBipolarTimesBipolar():
		c.kind = corrBipolarBipolar
		// Both operands are 1-bit, so SumRows cannot fail here.
		c.lhsCounts, _ = ctx.LHS.SumRows()
		c.rhsCounts, _ = ctx.RHS.SumRows()
	case ctx.LHS.IsBipolar():
		c.kind = corrBipolarLHS
		c.regularSums = rowValueSums(ctx.RHS)
	case ctx.RHS.IsBipolar():
		c.kind = corrBipolarRHS
		c.regularSums = rowValueSums(ctx.LHS)
	}
	return c
}

// rowValueSums returns the per-row sums of the logical values of a
// regular (non-bipolar) matrix, reconstructed from per-plane popcounts
// with the same weighting the kernel applies: 2^b per plane, negative
// for the top plane of a signed matrix.
func rowValueSums(m *bitserial.Matrix) []int32 {
	sums := make([]int32, m.Rows)
	wpr := m.WordsPerRow()
	for b := 0; b < m.NBits; b++ {
		w := int32(1) << uint(b)
		if m.Signed && b == m.NBits-1 {
			w = -w
		}
		plane := m.Bitplane(b)
		for r := 0; r < m.Rows; r++ {
			row := plane[r*wpr : (r+1)*wpr]
			var p int
			for _, word := range row {
				p += bits.OnesCount64(word)
			}
			sums[r] += w * int32(p)
		}
	}
	return sums
}

// planeSign reports whether a bit-plane carries negative weight: the
// top plane of a signed two's-complement operand. A bipolar plane is
// handled by correction instead, so it never negates.
func planeSign(m *bitserial.Matrix, b int) bool {
	return m.Signed && !m.IsBipolar() && b == m.NBits-1
}

// gemmTiles runs the blocked kernel for LHS row tiles [tileStart,
// tileEnd) against every RHS row tile. acc is scratch for one
// LHSBlock x RHSBlock accumulator tile and is fully overwritten; each
// worker of a parallel run owns its own.
//
// Padded rows hold zero bits, so their popcounts contribute nothing;
// the kernel computes across them freely and only logical cells are
// written back to ctx.Res.
func gemmTiles(ctx *Context, kern Kernel, corr *corrections, tileStart, tileEnd int, acc []int32) {
	lhs, rhs := ctx.LHS, ctx.RHS
	wpr := lhs.WordsPerRow()
	lb, rb := ctx.LHSBlock, ctx.RHSBlock
	numRHSTiles := rhs.RowsA / rb
	depth := int32(lhs.Cols)

	for lt := tileStart; lt < tileEnd; lt++ {
		for rt := 0; rt < numRHSTiles; rt++ {
			clear(acc[:lb*rb])
			for bL := 0; bL < lhs.NBits; bL++ {
				lhsTile := lhs.Bitplane(bL)[lt*lb*wpr : (lt+1)*lb*wpr]
				for bR := 0; bR < rhs.NBits; bR++ {
					rhsTile := rhs.Bitplane(bR)[rt*rb*wpr : (rt+1)*rb*wpr]
					alpha := int32(1) << uint(bL+bR)
					if planeSign(lhs, bL) != planeSign(rhs, bR) {
						alpha = -alpha
					}
					kern(lhsTile, rhsTile, lb, rb, wpr, alpha, acc, rb)
				}
			}
			writeTile(ctx, corr, depth, lt, rt, acc)
		}
	}
}

// writeTile finalises one accumulator tile into the unpadded result,
// applying the bipolar corrections:
//
//	bipolar x bipolar: C = 4p - 2*popcount(lhsRow) - 2*popcount(rhsRow) + depth
//	bipolar x regular: C = 2*acc - rowSum(regular side)
//
// both derived from mapping a stored bit x to the value 2x-1.
func writeTile(ctx *Context, corr *corrections, depth int32, lt, rt int, acc []int32) {
	lb, rb := ctx.LHSBlock, ctx.RHSBlock
	rowEnd := min((lt+1)*lb, ctx.LHS.Rows)
	colEnd := min((rt+1)*rb, ctx.RHS.Rows)
	for i := lt * lb; i < rowEnd; i++ {
		ti := i - lt*lb
		for j := rt * rb; j < colEnd; j++ {
			v := acc[ti*rb+(j-rt*rb)]
			switch corr.kind {
			case corrBipolarBipolar:
				v = 4*v - 2*corr.lhsCounts[i] - 2*corr.rhsCounts[j] + depth
			case corrBipolarLHS:
				v = 2*v - corr.regularSums[j]
			case corrBipolarRHS:
				v = 2*v - corr.regularSums[i]
			}
			ctx.Res[i*ctx.RHS.Rows+j] = v
		}
	}
}
