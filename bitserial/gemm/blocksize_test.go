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
	"errors"
	"testing"

	"github.com/liuguoyou/gemmbitserial/bitserial"
)

func TestComputeBlockSizeFeasible(t *testing.T) {
	mL, mR := 4, 4
	cacheBits := 64 * 1024
	depthBits := 64 * 4

	l, r, err := computeBlockSize(mL, mR, cacheBits, depthBits)
	if err != nil {
		t.Fatal(err)
	}
	if l%mL != 0 || r%mR != 0 {
		t.Errorf("blocks (%d, %d) not multiples of (%d, %d)", l, r, mL, mR)
	}
	if used := accBits*l*r + depthBits*(l+r); used > cacheBits {
		t.Errorf("blocks (%d, %d) use %d bits, budget %d", l, r, used, cacheBits)
	}
	// The next register step must not fit, else the solver left cache
	// utilisation on the table.
	l2, r2 := l+mL, r+mR
	if used := accBits*l2*r2 + depthBits*(l2+r2); used <= cacheBits {
		t.Errorf("blocks (%d, %d) are not maximal: (%d, %d) also fit", l, r, l2, r2)
	}
}

func TestComputeBlockSizeInfeasible(t *testing.T) {
	if _, _, err := computeBlockSize(2, 2, 0, 256); !errors.Is(err, ErrSolverInfeasible) {
		t.Errorf("zero budget err = %v, want ErrSolverInfeasible", err)
	}
	// Budget smaller than one register tile's stripes.
	if _, _, err := computeBlockSize(8, 8, 1024, 1<<20); !errors.Is(err, ErrSolverInfeasible) {
		t.Errorf("tiny budget err = %v, want ErrSolverInfeasible", err)
	}
}

func TestFinetuneBlockSize(t *testing.T) {
	cases := []struct {
		rows, bsMax, bsDiv, want int
	}{
		{100, 36, 4, 20}, // 20 divides 100 exactly
		{24, 12, 4, 12},  // tie on zero penalty goes to the largest
		{64, 48, 16, 32}, // 32 divides 64 exactly
		{7, 6, 2, 4},     // penalty 1 beats penalty 5
	}
	for _, c := range cases {
		if got := finetuneBlockSize(c.rows, c.bsMax, c.bsDiv); got != c.want {
			t.Errorf("finetuneBlockSize(%d, %d, %d) = %d, want %d", c.rows, c.bsMax, c.bsDiv, got, c.want)
		}
	}
}

func TestFinetuneNeverWorse(t *testing.T) {
	for rows := 1; rows < 200; rows += 7 {
		for bsMax := 8; bsMax <= 64; bsMax += 8 {
			got := finetuneBlockSize(rows, bsMax, 4)
			if got%4 != 0 {
				t.Fatalf("finetuneBlockSize(%d, %d, 4) = %d, not a multiple of 4", rows, bsMax, got)
			}
			before := bitserial.AlignTo(rows, bsMax) - rows
			after := bitserial.AlignTo(rows, got) - rows
			if after > before {
				t.Fatalf("finetuneBlockSize(%d, %d, 4) = %d increases padding %d -> %d",
					rows, bsMax, got, before, after)
			}
		}
	}
}

func TestAllocContextBlocks(t *testing.T) {
	be := CurrentBackend()
	cases := []struct {
		lhsRows, depth, rhsRows int
	}{
		{2, 3, 2},       // register blocking only
		{5, 64, 3},      // register blocking only, odd sizes
		{300, 256, 300}, // cache blocking
		{1000, 4096, 1000},
	}
	for _, c := range cases {
		ctx, err := AllocContext(c.lhsRows, c.depth, c.rhsRows, 2, 2, false, false)
		if err != nil {
			t.Fatal(err)
		}
		if ctx.LHSBlock%be.LHSMult != 0 || ctx.RHSBlock%be.RHSMult != 0 {
			t.Errorf("%v: blocks (%d, %d) not multiples of (%d, %d)",
				c, ctx.LHSBlock, ctx.RHSBlock, be.LHSMult, be.RHSMult)
		}
		if ctx.LHS.RowsA%ctx.LHSBlock != 0 || ctx.RHS.RowsA%ctx.RHSBlock != 0 {
			t.Errorf("%v: blocks (%d, %d) do not divide allocated rows (%d, %d)",
				c, ctx.LHSBlock, ctx.RHSBlock, ctx.LHS.RowsA, ctx.RHS.RowsA)
		}
		if ctx.LHS.ColsA%(be.DepthMult*bitserial.WordBits) != 0 {
			t.Errorf("%v: allocated depth %d not aligned to %d words", c, ctx.LHS.ColsA, be.DepthMult)
		}
		if len(ctx.Res) != c.lhsRows*c.rhsRows {
			t.Errorf("%v: result buffer %d cells, want %d", c, len(ctx.Res), c.lhsRows*c.rhsRows)
		}
		ctx.Release()
	}
}
