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
	"fmt"

	"github.com/liuguoyou/gemmbitserial/bitserial"
)

// Context bundles the operands, block sizes and result buffer of one
// bit-serial multiplication. The Context owns all three; Release
// releases them together.
//
// Res is row-major LHS.Rows x RHS.Rows and unpadded: only logical
// cells are ever written.
type Context struct {
	LHS, RHS *bitserial.Matrix

	LHSBlock, RHSBlock int

	Res []int32
}

// AllocContext allocates a Context for multiplying an lhsRows x depth
// matrix by the transpose of an rhsRows x depth matrix, using the
// register multiples and cache budget of the active back-end.
//
// Both operands are laid out with their row alignment equal to the
// chosen block size, so every row tile is contiguous within a
// bit-plane, and with columns aligned to the back-end's depth tile.
func AllocContext(lhsRows, depth, rhsRows, lhsBits, rhsBits int, lhsSigned, rhsSigned bool) (*Context, error) {
	return allocContext(CurrentBackend(), lhsRows, depth, rhsRows, lhsBits, rhsBits, lhsSigned, rhsSigned)
}

func allocContext(be *Backend, lhsRows, depth, rhsRows, lhsBits, rhsBits int, lhsSigned, rhsSigned bool) (*Context, error) {
	if lhsRows < 1 || depth < 1 || rhsRows < 1 {
		return nil, fmt.Errorf("%w: %dx%d * (%dx%d)^T", bitserial.ErrInvalidShape, lhsRows, depth, rhsRows, depth)
	}
	depthAligned := bitserial.AlignTo(depth, be.DepthMult*bitserial.WordBits)

	ctx := &Context{}
	var err error
	ctx.LHSBlock, ctx.RHSBlock, err = computeBlockSize(be.LHSMult, be.RHSMult, be.CacheBits, depthAligned)
	if err != nil {
		return nil, err
	}
	if ctx.LHSBlock > lhsRows || ctx.RHSBlock > rhsRows {
		// The whole problem fits the cache budget; register blocking
		// alone is enough.
		ctx.LHSBlock = bitserial.AlignTo(lhsRows, be.LHSMult)
		ctx.RHSBlock = bitserial.AlignTo(rhsRows, be.RHSMult)
	} else {
		// Shrink a block when it would pad its side by more than 10%.
		if float64(bitserial.AlignTo(lhsRows, ctx.LHSBlock)-lhsRows) > 0.1*float64(lhsRows) {
			ctx.LHSBlock = finetuneBlockSize(lhsRows, ctx.LHSBlock, be.LHSMult)
		}
		if float64(bitserial.AlignTo(rhsRows, ctx.RHSBlock)-rhsRows) > 0.1*float64(rhsRows) {
			ctx.RHSBlock = finetuneBlockSize(rhsRows, ctx.RHSBlock, be.RHSMult)
		}
	}

	colAlign := be.DepthMult * bitserial.WordBits
	ctx.LHS, err = bitserial.Alloc(lhsBits, lhsRows, depth, lhsSigned, ctx.LHSBlock, colAlign)
	if err != nil {
		return nil, err
	}
	ctx.RHS, err = bitserial.Alloc(rhsBits, rhsRows, depth, rhsSigned, ctx.RHSBlock, colAlign)
	if err != nil {
		ctx.LHS.Release()
		return nil, err
	}
	ctx.Res = make([]int32, lhsRows*rhsRows)
	return ctx, nil
}

// Release releases both operands and the result buffer. The Context
// must not be used afterwards.
func (ctx *Context) Release() {
	if ctx.LHS != nil {
		ctx.LHS.Release()
	}
	if ctx.RHS != nil {
		ctx.RHS.Release()
	}
	ctx.Res = nil
}

// IsBipolarTimesBipolar reports whether both operands are bipolar.
func (ctx *Context) IsBipolarTimesBipolar() bool {
	return ctx.LHS.IsBipolar() && ctx.RHS.IsBipolar()
}

// IsBipolarTimesRegular reports whether exactly one operand is bipolar.
func (ctx *Context) IsBipolarTimesRegular() bool {
	return ctx.LHS.IsBipolar() != ctx.RHS.IsBipolar()
}

// Summary returns shapes, block sizes and the share of allocated
// compute that lands on logical cells.
func (ctx *Context) Summary() string {
	actualOps := 2 * float64(ctx.LHS.Rows) * float64(ctx.LHS.Cols) * float64(ctx.RHS.Rows)
	allocOps := 2 * float64(ctx.LHS.RowsA) * float64(ctx.LHS.ColsA) * float64(ctx.RHS.RowsA)
	return fmt.Sprintf("LHS %s, block %d\nRHS %s, block %d\nactual op percentage: %.1f%%",
		ctx.LHS.Summary(), ctx.LHSBlock, ctx.RHS.Summary(), ctx.RHSBlock, 100*actualOps/allocOps)
}
