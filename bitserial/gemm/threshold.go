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

// Threshold maps each accumulator of a rows x cols result to the
// number of thresholds it crosses: out[r*cols+c] counts the t with
// res[r*cols+c] >= thresholds[t*rows+r]. thresholds has shape
// [numThres][channels] with one channel per result row and must be
// non-decreasing along the threshold axis for the activation to be
// monotone.
//
// Broadcasting a single threshold channel across rows is a known
// unsupported mode and returns ErrUnsupported.
func Threshold(res []int32, rows, cols int, thresholds []int32, numThres int) ([]int32, error) {
	if len(res) < rows*cols {
		panic("gemm: res slice too short")
	}
	if numThres < 1 || len(thresholds)%numThres != 0 {
		return nil, fmt.Errorf("%w: thresholds length %d not a multiple of %d",
			bitserial.ErrInvalidShape, len(thresholds), numThres)
	}
	if channels := len(thresholds) / numThres; channels != rows {
		return nil, fmt.Errorf("%w: threshold broadcast (%d channels for %d rows)",
			bitserial.ErrUnsupported, channels, rows)
	}

	out := make([]int32, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := res[r*cols+c]
			var crossed int32
			for t := 0; t < numThres; t++ {
				if v >= thresholds[t*rows+r] {
					crossed++
				}
			}
			out[r*cols+c] = crossed
		}
	}
	return out, nil
}
