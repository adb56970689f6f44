//go:build harness_nofaultguard

package faultguard

// Enabled reports whether fault containment is compiled in.
const Enabled = false
