package transport

import "crypto/tls"

// InsecureAcceptAllConfig returns a tls.Config that accepts any
// certificate the server presents. This is the reference client's
// default because the server commonly runs self-signed certificates;
// spec.md's design notes require this to be a pluggable hook rather than
// a hardcoded behavior, see WithVerifyPolicy.
func InsecureAcceptAllConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // pluggable: see WithVerifyPolicy for production use
	}
}

// WithVerifyPolicy builds a tls.Config that performs no built-in chain
// verification but instead calls policy with the raw and verified
// certificate chains, the same hook shape Go's tls.Config.VerifyPeerCertificate
// exposes. A host application that wants real verification (or
// certificate pinning) supplies policy; this module never pins a
// certificate on its own, per spec.md §1's non-goals.
func WithVerifyPolicy(policy VerifyPolicy) *tls.Config {
	return &tls.Config{
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: policy,
	}
}
