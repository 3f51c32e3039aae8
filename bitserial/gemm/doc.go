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

// Package gemm multiplies bit-serial matrices with cache-blocked
// AND+popcount kernels.
//
// The product C = A * B^T is computed over bit-plane pairs: each pair
// (bL, bR) contributes popcount(A_bL AND B_bR) weighted by 2^(bL+bR),
// negated when exactly one of the planes is the negative top bit of a
// two's-complement operand. Bipolar {-1, +1} operands run through the
// same popcount stream and are corrected with precomputed per-row sums.
//
// A Context bundles the two operands, the result buffer and the block
// sizes chosen by the quadratic cache solver. The micro-kernel is
// selected per architecture at init time; set BITSERIAL_NO_SIMD=1 to
// force the generic back-end.
//
//	ctx, err := gemm.AllocContext(rows, depth, cols, 2, 2, false, false)
//	if err != nil {
//	    ...
//	}
//	defer ctx.Release()
//	bitserial.ImportRegular(ctx.LHS, a, false)
//	bitserial.ImportRegular(ctx.RHS, b, false)
//	gemm.GEMM(ctx)
//	// ctx.Res now holds the int32 result, row-major lhsRows x rhsRows.
package gemm
