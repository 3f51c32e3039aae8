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
	"math"

	"github.com/liuguoyou/gemmbitserial/bitserial"
)

// ErrSolverInfeasible reports that no positive row-tile count satisfies
// the cache budget.
var ErrSolverInfeasible = errors.New("gemm: block size solver infeasible")

// accBits is the size of one result accumulator in bits.
const accBits = 32

// computeBlockSize chooses row-tile sizes for both operands so that a
// result block plus one input stripe per side fits the cache budget:
//
//	accBits*L*R + depthBits*(L+R) <= cacheBits
//
// with L = lhsMult*x and R = rhsMult*x. Substituting gives a quadratic
// in x; the largest non-negative integer below its positive root is
// taken, so the returned blocks are always multiples of their register
// tile sizes. depthBits is the padded depth of one row in bits.
func computeBlockSize(lhsMult, rhsMult, cacheBits, depthBits int) (lhsBlock, rhsBlock int, err error) {
	a := float64(accBits) * float64(lhsMult) * float64(rhsMult)
	b := float64(depthBits) * float64(lhsMult+rhsMult)
	c := -float64(cacheBits)
	discr := b*b - 4*a*c
	if discr <= 0 {
		return 0, 0, ErrSolverInfeasible
	}
	x := int64(math.Floor((-b + math.Sqrt(discr)) / (2 * a)))
	if x <= 0 {
		return 0, 0, ErrSolverInfeasible
	}
	return lhsMult * int(x), rhsMult * int(x), nil
}

// finetuneBlockSize searches for a block size with less padding waste
// than bsMax for a matrix of the given row count. Candidates run from
// bsMax down to bsDiv in steps of bsDiv, keeping only multiples of
// bsDiv; the candidate with the smallest padding wins, and ties go to
// the largest candidate.
func finetuneBlockSize(rows, bsMax, bsDiv int) int {
	best := bsMax
	minPenalty := bitserial.AlignTo(rows, best) - rows
	for cand := bsMax; cand >= bsDiv; cand -= bsDiv {
		if cand%bsDiv != 0 {
			continue
		}
		penalty := bitserial.AlignTo(rows, cand) - rows
		if penalty < minPenalty {
			best = cand
			minPenalty = penalty
		}
	}
	return best
}
