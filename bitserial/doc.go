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

// Package bitserial stores low-precision integer matrices as binary
// bit-planes, the layout consumed by the bit-serial GEMM kernels in the
// gemm subpackage.
//
// A Matrix of nbits-bit integers is decomposed into nbits bit-planes,
// each a row-major bit matrix packed 64 columns per machine word.
// Elements can be unsigned, two's-complement signed, or bipolar binary
// {-1, +1} when nbits is 1 and the matrix is signed.
//
// Basic usage:
//
//	m, err := bitserial.Alloc(2, 64, 256, false, 1, 64)
//	if err != nil {
//	    ...
//	}
//	bitserial.ImportRegular(m, src, false)
//	// hand m to a gemm.Context, or read cells back:
//	bitserial.ExportRegular(m, dst)
package bitserial
