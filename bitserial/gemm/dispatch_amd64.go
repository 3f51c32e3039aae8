//go:build amd64

package gemm

import "golang.org/x/sys/cpu"

func init() {
	if NoSimdEnv() {
		currentBackend = BackendGeneric
		return
	}

	// POPCNT has shipped with every x86-64 CPU since Nehalem; without
	// it math/bits.OnesCount64 falls back to a shift sequence and the
	// unrolled chains buy nothing.
	if cpu.X86.HasPOPCNT {
		currentBackend = BackendUnrolled
	} else {
		currentBackend = BackendGeneric
	}
}
