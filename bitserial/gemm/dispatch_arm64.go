//go:build arm64

package gemm

import "golang.org/x/sys/cpu"

func init() {
	if NoSimdEnv() {
		currentBackend = BackendGeneric
		return
	}

	// ARM64 always has NEON (ASIMD) and with it the CNT instruction
	// behind math/bits.OnesCount64. The check is kept for consistency
	// with the amd64 path.
	if cpu.ARM64.HasASIMD {
		currentBackend = BackendUnrolled
	} else {
		currentBackend = BackendGeneric
	}
}
