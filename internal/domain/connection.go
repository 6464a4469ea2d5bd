// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxDisplayNameLen = 36

	// DefaultDisplayName is shown when the client never provided a name.
	DefaultDisplayName = "stranger"
)

var ErrDisplayNameTooLong = errors.New("display name too long")

// ConnID identifies one live transport endpoint, stable for its lifetime.
type ConnID string

// MediaFlags are display-only mic/cam indicators relayed between peers.
// They are never enforced server-side.
type MediaFlags struct {
	MicOn bool `json:"micOn"`
	CamOn bool `json:"camOn"`
}

type Connection struct {
	ID    ConnID
	Name  string
	Media MediaFlags
}

// NewConnection avoids raw literals in adapters and keeps construction
// obvious. The name never fails registration: absent falls back to the
// placeholder, oversized is cut to the cap. Renames go through SetName,
// which rejects instead.
func NewConnection(id ConnID, name string) *Connection {
	if name == "" {
		name = DefaultDisplayName
	}
	if r := []rune(name); len(r) > MaxDisplayNameLen {
		name = string(r[:MaxDisplayNameLen])
	}
	return &Connection{
		ID:   id,
		Name: name,
		// Clients start with mic and cam on; flags only change via media:* relay.
		Media: MediaFlags{MicOn: true, CamOn: true},
	}
}

func (c *Connection) SetName(name string) error {
	if name == "" {
		return nil
	}
	if len([]rune(name)) > MaxDisplayNameLen {
		return ErrDisplayNameTooLong
	}
	c.Name = name
	return nil
}
