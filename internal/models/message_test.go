package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMessageType(t *testing.T) {
	assert.Equal(t, TypeText, ParseMessageType("TEXT", ""))
	assert.Equal(t, TypeText, ParseMessageType("text", ""))
	assert.Equal(t, TypeFile, ParseMessageType(" file ", ""))
	assert.Equal(t, TypeText, ParseMessageType("", ""))
	assert.Equal(t, TypeFile, ParseMessageType("", "http://localhost:8080/uploads/a.png"))
	assert.Equal(t, TypeText, ParseMessageType("STICKER", ""))
}

func TestIsFile(t *testing.T) {
	assert.True(t, Message{Type: TypeFile}.IsFile())
	assert.False(t, Message{Type: TypeText}.IsFile())
}
