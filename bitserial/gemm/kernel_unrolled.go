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

// kernelUnrolled walks the word stream four words at a time with
// independent popcount chains, which keeps several POPCNT/CNT units
// busy per cycle on amd64 and arm64. Depth tiles of back-ends that
// select this kernel are multiples of four words, so rows allocated by
// a Context never enter the tail loop; the tail handles matrices
// allocated with other alignments.
func kernelUnrolled(lhs, rhs []uint64, lhsRows, rhsRows, wordsPerRow int, alpha int32, acc []int32, accCols int) {
	for i := 0; i < lhsRows; i++ {
		lrow := lhs[i*wordsPerRow : (i+1)*wordsPerRow]
		for j := 0; j < rhsRows; j++ {
			rrow := rhs[j*wordsPerRow : (j+1)*wordsPerRow]
			var p0, p1, p2, p3 int
			var w int
			for w = 0; w+4 <= wordsPerRow; w += 4 {
				p0 += bits.OnesCount64(lrow[w] & rrow[w])
				p1 += bits.OnesCount64(lrow[w+1] & rrow[w+1])
				p2 += bits.OnesCount64(lrow[w+2] & rrow[w+2])
				p3 += bits.OnesCount64(lrow[w+3] & rrow[w+3])
			}
			for ; w < wordsPerRow; w++ {
				p0 += bits.OnesCount64(lrow[w] & rrow[w])
			}
			acc[i*accCols+j] += alpha * int32(p0+p1+p2+p3)
		}
	}
}
