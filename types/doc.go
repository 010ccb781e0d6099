// Package types holds the pure data structures shared by ighalo's public
// API, its core pool/scheduler bookkeeping, and its hal backends.
//
// Architecture:
//
//	types/  → Data structures (no logic)
//	core/   → Buffer pool + slot tracking
//	hal/    → Host, CUDA and ROCm backends
//
// Nothing in this package allocates memory or touches a device; it only
// describes shapes, sizes and enums that the other layers interpret.
package types
