package models

import (
	"fmt"
	"strings"
)

// Room is a chat room as listed by the server
type Room struct {
	ID     string // server-side key
	RoomID string // the name users join by
}

// Member is a participant of a room
type Member struct {
	Username string
	Role     string
}

// String renders the member for display, e.g. "alice (teacher)"
func (m Member) String() string {
	if m.Role == "" {
		return m.Username
	}
	return fmt.Sprintf("%s (%s)", m.Username, strings.ToLower(m.Role))
}
