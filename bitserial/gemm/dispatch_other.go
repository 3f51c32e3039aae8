//go:build !amd64 && !arm64

package gemm

func init() {
	currentBackend = BackendGeneric
}
