//go:build !harness_nofaultguard

package faultguard

// Enabled reports whether fault containment is compiled in. Build with
// -tags harness_nofaultguard to remove it.
const Enabled = true
