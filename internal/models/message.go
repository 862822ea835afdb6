package models

import (
	"strings"
	"time"
)

// MessageType distinguishes text messages from file attachments
type MessageType string

const (
	TypeText MessageType = "TEXT"
	TypeFile MessageType = "FILE"
)

// ParseMessageType maps a wire value to a MessageType. Unknown values fall
// back to TEXT unless the message carries a file URL.
func ParseMessageType(s, fileURL string) MessageType {
	switch MessageType(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeFile:
		return TypeFile
	case TypeText:
		return TypeText
	}
	if fileURL != "" {
		return TypeFile
	}
	return TypeText
}

// Message represents a chat message in a room
type Message struct {
	ID              string      `json:"id"`
	Sender          string      `json:"sender"`
	Content         string      `json:"content,omitempty"`
	Type            MessageType `json:"type"`
	FileURL         string      `json:"fileUrl,omitempty"`
	FileName        string      `json:"fileName,omitempty"`
	FileContentType string      `json:"fileContentType,omitempty"`
	FileSize        int64       `json:"fileSize,omitempty"`
	Timestamp       time.Time   `json:"timestamp"`
}

// IsFile reports whether the message is a file attachment
func (m Message) IsFile() bool {
	return m.Type == TypeFile
}
