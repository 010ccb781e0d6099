package ighalo

import (
	"os"
	"strconv"
)

// defaultThreadCopyThreshold is GG_THREADCOPY_THRESHOLD: the contiguous
// copy size (in bytes) above which host pack/unpack switches from a
// single-threaded copy to a thread-parallel one.
const defaultThreadCopyThreshold = 64 * 1024

// Config parameterizes a Context explicitly, rather than through hidden
// global constructors (Design Notes §9): the thread-copy threshold, and
// which dimensions use device-aware transport on each GPU vendor. The
// allocation granularity is the fixed constant types.Granularity, not a
// Config field.
type Config struct {
	// ThreadCopyThreshold is GG_THREADCOPY_THRESHOLD in bytes.
	ThreadCopyThreshold int
	// CUDAAware[dim] is true when IGG_CUDAAWARE_MPI selects the
	// device-aware path for dim on the Nvidia backend. Indexed 1..3;
	// index 0 is unused.
	CUDAAware [4]bool
	// ROCmAware[dim] mirrors CUDAAware for the AMD backend.
	ROCmAware [4]bool
}

// DefaultConfig returns a Config with the thread-copy threshold set and
// every dimension defaulting to the staged host path (no device-aware
// transport), matching spec §6: "Unset ⇒ staged host path."
func DefaultConfig() Config {
	return Config{ThreadCopyThreshold: defaultThreadCopyThreshold}
}

// FromEnv reads IGG_CUDAAWARE_MPI and IGG_ROCMAWARE_MPI and applies them
// uniformly across all dimensions on top of cfg, per spec §6's capability
// layer. A real capability layer could set CUDAAware/ROCmAware per
// dimension; FromEnv only models the two documented whole-process
// environment variables.
func FromEnv(cfg Config) Config {
	if envBool("IGG_CUDAAWARE_MPI") {
		for dim := 1; dim <= 3; dim++ {
			cfg.CUDAAware[dim] = true
		}
	}
	if envBool("IGG_ROCMAWARE_MPI") {
		for dim := 1; dim <= 3; dim++ {
			cfg.ROCmAware[dim] = true
		}
	}
	return cfg
}

func envBool(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
