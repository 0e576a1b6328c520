package blynk

import (
	"github.com/google/uuid"
)

// transportState mirrors spec.md §3's Session.transport_state.
type transportState int

const (
	stateDisconnected transportState = iota
	stateConnecting
	stateUp
	stateReconnecting
)

func (s transportState) String() string {
	switch s {
	case stateDisconnected:
		return "Disconnected"
	case stateConnecting:
		return "Connecting"
	case stateUp:
		return "Up"
	case stateReconnecting:
		return "Reconnecting"
	default:
		return "Unknown"
	}
}

// authState mirrors spec.md §3's Session.auth_state.
type authState int

const (
	authAnonymous authState = iota
	authAuthenticating
	authAuthenticated
)

// credentialKind discriminates the two credential shapes a Session may
// hold for re-auth, per spec.md §3.
type credentialKind int

const (
	credentialNone credentialKind = iota
	credentialPassword
	credentialShareToken
)

// credentials is the saved_credentials union spec.md §3 describes; held
// in memory only, never persisted (spec.md's non-goal on credential
// storage, carried forward in SPEC_FULL.md §9).
type credentials struct {
	kind credentialKind

	email          string
	passwordDigest string

	shareToken string
}

// session is the mutable record a Connector owns exclusively, per
// spec.md §3's ownership rules. id is a uuid generated once per
// Connector; it is not attached to log lines or trace spans.
type session struct {
	id string

	transport transportState
	auth      authState

	creds credentials

	activeDashboardID *int
	reconnectAttempt  int
}

func newSession() *session {
	return &session{id: uuid.NewString(), transport: stateDisconnected, auth: authAnonymous}
}

func (s *session) reset() {
	s.transport = stateDisconnected
	s.auth = authAnonymous
	s.activeDashboardID = nil
	s.reconnectAttempt = 0
}
