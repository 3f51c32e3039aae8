// Copyright 2025 The gemmbitserial Authors. SPDX-License-Identifier: Apache-2.0

package bitserial

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSumRows(t *testing.T) {
	rows, cols := 9, 130
	m, err := Alloc(1, rows, cols, false, 4, 64)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(11))
	src := randomValues(rng, rows*cols, 1, false)
	ImportRegular(m, src, false)

	sums, err := m.SumRows()
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != rows {
		t.Fatalf("SumRows returned %d entries, want %d", len(sums), rows)
	}
	for r := 0; r < rows; r++ {
		var want int32
		for c := 0; c < cols; c++ {
			want += src[r*cols+c]
		}
		if sums[r] != want {
			t.Errorf("row %d popcount = %d, want %d", r, sums[r], want)
		}
	}
}

func TestSumRowsMultiBitUnsupported(t *testing.T) {
	m, err := Alloc(2, 4, 64, false, 1, 64)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.SumRows(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("SumRows on 2-bit matrix err = %v, want ErrUnsupported", err)
	}
}
