package types

import "time"

type TerminalStatus string

const (
	TerminalConnected    TerminalStatus = "connected"
	TerminalDisconnected TerminalStatus = "disconnected"
	TerminalError        TerminalStatus = "error"
)

// Terminal is a door controller's settings record. The password is only
// ever held as a bcrypt hash.
type Terminal struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	IPAddress    string         `json:"ip_address"`
	Port         string         `json:"port"`
	Username     string         `json:"username,omitempty"`
	PasswordHash []byte         `json:"-"`
	Status       TerminalStatus `json:"status"`
	LastSeenAt   *time.Time     `json:"last_seen_at,omitempty"`
	LastEventAt  *time.Time     `json:"last_event_at,omitempty"` // latest decision timestamp
}
