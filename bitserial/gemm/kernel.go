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

import "math/bits"

// Kernel accumulates one bit-plane pair into a tile of accumulators:
//
//	acc[i*accCols+j] += alpha * popcount(lhsRow(i) AND rhsRow(j))
//
// for every (i, j) in lhsRows x rhsRows, where each row is wordsPerRow
// consecutive words of lhs and rhs. alpha carries the 2^(bL+bR)
// weighting and the sign correction. Every back-end must produce
// identical integer results; back-ends differ only in how they walk
// the word stream.
type Kernel func(lhs, rhs []uint64, lhsRows, rhsRows, wordsPerRow int, alpha int32, acc []int32, accCols int)

// kernelGeneric is the scalar reference micro-kernel: one 64-bit AND
// and one hardware popcount per word.
func kernelGeneric(lhs, rhs []uint64, lhsRows, rhsRows, wordsPerRow int, alpha int32, acc []int32, accCols int) {
	for i := 0; i < lhsRows; i++ {
		lrow := lhs[i*wordsPerRow : (i+1)*wordsPerRow]
		for j := 0; j < rhsRows; j++ {
			rrow := rhs[j*wordsPerRow : (j+1)*wordsPerRow]
			var p int
			for w := range lrow {
				p += bits.OnesCount64(lrow[w] & rrow[w])
			}
			acc[i*accCols+j] += alpha * int32(p)
		}
	}
}
