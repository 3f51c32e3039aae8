// Copyright 2025 The gemmbitserial Authors. SPDX-License-Identifier: Apache-2.0

package bitserial

import (
	"fmt"
	"math/bits"
)

// SumRows returns the per-row popcount of a 1-bit matrix as a
// length-Rows slice. Padded columns hold zero bits, so counting over
// the allocated row words yields the logical count.
//
// The bipolar correction paths of the GEMM kernel rely on this to
// reconstruct signed sums without re-scanning the operands. Matrices
// with more than one bit-plane return ErrUnsupported.
func (m *Matrix) SumRows() ([]int32, error) {
	if m.NBits != 1 {
		return nil, fmt.Errorf("%w: SumRows on a %d-bit matrix", ErrUnsupported, m.NBits)
	}
	sums := make([]int32, m.Rows)
	wpr := m.WordsPerRow()
	plane := m.Bitplane(0)
	for r := 0; r < m.Rows; r++ {
		row := plane[r*wpr : (r+1)*wpr]
		var p int
		for _, w := range row {
			p += bits.OnesCount64(w)
		}
		sums[r] = int32(p)
	}
	return sums, nil
}
