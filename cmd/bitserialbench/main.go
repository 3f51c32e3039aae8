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

// Package main benchmarks the bit-serial GEMM for a given shape and
// bit-width and verifies one multiplication against a dense gonum
// reference first.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/mat"

	"github.com/liuguoyou/gemmbitserial/bitserial"
	"github.com/liuguoyou/gemmbitserial/bitserial/gemm"
)

func main() {
	lhsRows := flag.Int("lhsrows", 256, "rows of the left operand")
	depth := flag.Int("depth", 1024, "shared depth (columns of both operands)")
	rhsRows := flag.Int("rhsrows", 256, "rows of the right operand")
	lhsBits := flag.Int("lhsbits", 2, "bits of precision of the left operand")
	rhsBits := flag.Int("rhsbits", 2, "bits of precision of the right operand")
	signed := flag.Bool("signed", false, "use signed two's-complement operands")
	parallel := flag.Bool("parallel", true, "dispatch LHS row tiles across cores")
	iters := flag.Int("iters", 10, "timed iterations")
	seed := flag.Int64("seed", 1, "random seed for operand data")
	flag.Parse()

	printPlatform()

	ctx, err := gemm.AllocContext(*lhsRows, *depth, *rhsRows, *lhsBits, *rhsBits, *signed, *signed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "alloc:", err)
		os.Exit(1)
	}
	defer ctx.Release()
	fmt.Println(ctx.Summary())
	fmt.Println()

	rng := rand.New(rand.NewSource(*seed))
	a := randomOperand(rng, *lhsRows**depth, *lhsBits, *signed)
	b := randomOperand(rng, *rhsRows**depth, *rhsBits, *signed)
	bitserial.ImportRegular(ctx.LHS, a, false)
	bitserial.ImportRegular(ctx.RHS, b, false)

	run := gemm.GEMM
	if *parallel {
		run = gemm.ParallelGEMM
	}

	run(ctx)
	if bad := verify(ctx.Res, a, b, *lhsRows, *depth, *rhsRows); bad >= 0 {
		fmt.Fprintf(os.Stderr, "verification FAILED at result index %d\n", bad)
		os.Exit(1)
	}
	fmt.Println("verified against gonum reference")

	start := time.Now()
	for i := 0; i < *iters; i++ {
		run(ctx)
	}
	elapsed := time.Since(start)
	perCall := elapsed / time.Duration(*iters)
	// Two ops (multiply + add) per logical MAC.
	gops := 2 * float64(*lhsRows) * float64(*depth) * float64(*rhsRows) / perCall.Seconds() / 1e9
	fmt.Printf("%v per call, %.2f GOPS\n", perCall, gops)
}

// randomOperand draws unbiased samples over the full representable
// range of the requested precision; bipolar operands draw from
// {-1, +1}.
func randomOperand(rng *rand.Rand, n, nbits int, signed bool) []int32 {
	out := make([]int32, n)
	span := 1 << uint(nbits)
	for i := range out {
		if nbits == 1 && signed {
			out[i] = int32(2*rng.Intn(2) - 1)
			continue
		}
		v := rng.Intn(span)
		if signed {
			v -= span / 2
		}
		out[i] = int32(v)
	}
	return out
}

// verify compares every result cell against a dense float64 multiply;
// int32 accumulators are exact in float64 so equality is strict.
// Returns the first mismatching index, or -1.
func verify(res []int32, a, b []int32, m, k, n int) int {
	da := mat.NewDense(m, k, toFloat(a))
	db := mat.NewDense(n, k, toFloat(b))
	var dc mat.Dense
	dc.Mul(da, db.T())
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if float64(res[i*n+j]) != dc.At(i, j) {
				return i*n + j
			}
		}
	}
	return -1
}

func toFloat(src []int32) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

func printPlatform() {
	fmt.Printf("GOOS: %s, GOARCH: %s, NumCPU: %d\n", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	switch runtime.GOARCH {
	case "amd64":
		fmt.Printf("POPCNT: %v, AVX2: %v\n", cpu.X86.HasPOPCNT, cpu.X86.HasAVX2)
	case "arm64":
		fmt.Printf("ASIMD: %v\n", cpu.ARM64.HasASIMD)
	}
	fmt.Printf("back-end: %s\n\n", gemm.CurrentBackend().Name)
}
