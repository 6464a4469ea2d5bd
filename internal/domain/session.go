package domain

import "time"

type SessionID string

// Role of a participant inside a session. The initiator creates the first
// session-description offer; the responder answers it.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
)

type SessionState int

const (
	SessionForming SessionState = iota
	SessionActive
	SessionDissolved
)

func (s SessionState) String() string {
	switch s {
	case SessionForming:
		return "forming"
	case SessionActive:
		return "active"
	case SessionDissolved:
		return "dissolved"
	}
	return "unknown"
}

// Session is one 1:1 pairing. Exactly two distinct participants; dissolution
// is terminal and the identifier is never reused.
type Session struct {
	ID        SessionID
	Initiator ConnID
	Responder ConnID
	CreatedAt time.Time
	State     SessionState
}

// Partner returns the other participant, or "" if id is not a member.
func (s *Session) Partner(id ConnID) ConnID {
	switch id {
	case s.Initiator:
		return s.Responder
	case s.Responder:
		return s.Initiator
	}
	return ""
}

// RoleOf returns the role of id inside the session, or "" if not a member.
func (s *Session) RoleOf(id ConnID) Role {
	switch id {
	case s.Initiator:
		return RoleInitiator
	case s.Responder:
		return RoleResponder
	}
	return ""
}
