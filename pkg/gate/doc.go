// Package gate is the session gate: the binary Guest/Admin state that
// controls access to the editor's mutating operations.
//
// The gate has exactly two states and two transitions:
//
//	Guest --(Login success)--> Admin
//	Admin --(Logout)---------> Guest
//
// Credential checking is pluggable through the Verifier interface so the
// secret lives in runtime configuration rather than in shipped code. The
// registries consult Authorized() before honoring any mutation; this is not
// a security boundary, it is a convenience gate for a single operator.
package gate
