package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"classchat/internal/models"
)

// localDateTime is the backend's zone-less timestamp layout.
const localDateTime = "2006-01-02T15:04:05.999999999"

// wireMessage is a message as serialized by the chat backend.
type wireMessage struct {
	ID              wireID   `json:"id"`
	Sender          string   `json:"sender"`
	Content         string   `json:"content"`
	TimeStamp       wireTime `json:"timeStamp"`
	Timestamp       wireTime `json:"timestamp"`
	Type            string   `json:"type"`
	FileURL         string   `json:"fileUrl"`
	FileName        string   `json:"fileName"`
	FileContentType string   `json:"fileContentType"`
	FileSize        *int64   `json:"fileSize"`
}

func (w wireMessage) toModel() models.Message {
	m := models.Message{
		ID:              string(w.ID),
		Sender:          w.Sender,
		Content:         w.Content,
		Type:            models.ParseMessageType(w.Type, w.FileURL),
		FileURL:         w.FileURL,
		FileName:        w.FileName,
		FileContentType: w.FileContentType,
		Timestamp:       time.Time(w.TimeStamp),
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Time(w.Timestamp)
	}
	if w.FileSize != nil {
		m.FileSize = *w.FileSize
	}
	return m
}

// wireRoom is a room as serialized by the chat backend. The embedded
// message history is not decoded.
type wireRoom struct {
	ID     wireID `json:"id"`
	RoomID string `json:"roomId"`
}

func (w wireRoom) toModel() models.Room {
	return models.Room{ID: string(w.ID), RoomID: w.RoomID}
}

// wireMember is a room participant.
type wireMember struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// wireID accepts numeric and string identifiers.
type wireID string

func (id *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = wireID(n.String())
	return nil
}

// wireTime accepts RFC 3339 and zone-less local date-times.
type wireTime time.Time

func (t *wireTime) UnmarshalJSON(data []byte) error {
	var s string
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = wireTime(v)
		return nil
	}
	v, err := time.ParseInLocation(localDateTime, s, time.Local)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", s, err)
	}
	*t = wireTime(v)
	return nil
}
