package domain

// RoomID identifies a chat room. Rooms group connections for text messaging
// and are independent of the 1:1 video pairing.
type RoomID string

// LeaveReason describes why a connection left its session.
type LeaveReason string

const (
	LeaveVoluntary  LeaveReason = "voluntary-leave"
	LeaveSkip       LeaveReason = "skip"
	LeaveDisconnect LeaveReason = "disconnect"
)
