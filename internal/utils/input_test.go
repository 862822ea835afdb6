package utils

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptMissingBoth(t *testing.T) {
	var out bytes.Buffer
	details, err := PromptMissing(strings.NewReader(" alice \nmath-101"), &out, SessionDetails{})
	require.NoError(t, err)
	assert.Equal(t, SessionDetails{Username: "alice", Room: "math-101"}, details)
	assert.Contains(t, out.String(), "username")
	assert.Contains(t, out.String(), "room")
}

func TestPromptMissingSkipsKnown(t *testing.T) {
	var out bytes.Buffer
	details, err := PromptMissing(strings.NewReader("physics\n"), &out, SessionDetails{Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, SessionDetails{Username: "bob", Room: "physics"}, details)
	assert.NotContains(t, out.String(), "username")

	out.Reset()
	details, err = PromptMissing(strings.NewReader(""), &out, details)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestPromptMissingErrors(t *testing.T) {
	_, err := PromptMissing(strings.NewReader("\n"), io.Discard, SessionDetails{})
	assert.EqualError(t, err, "username is required")

	_, err = PromptMissing(strings.NewReader("alice\n\n"), io.Discard, SessionDetails{})
	assert.EqualError(t, err, "room is required")

	_, err = PromptMissing(strings.NewReader(""), io.Discard, SessionDetails{})
	assert.ErrorIs(t, err, io.EOF)
}

func TestPromptMissingOffersRooms(t *testing.T) {
	var out bytes.Buffer
	rooms := []string{"math-101", "physics"}

	details, err := PromptMissing(strings.NewReader("2\n"), &out, SessionDetails{Username: "bob", Rooms: rooms})
	require.NoError(t, err)
	assert.Equal(t, "physics", details.Room)
	assert.Contains(t, out.String(), "1) math-101")
	assert.Contains(t, out.String(), "2) physics")

	details, err = PromptMissing(strings.NewReader("art\n"), io.Discard, SessionDetails{Username: "bob", Rooms: rooms})
	require.NoError(t, err)
	assert.Equal(t, "art", details.Room)

	details, err = PromptMissing(strings.NewReader("7\n"), io.Discard, SessionDetails{Username: "bob", Rooms: rooms})
	require.NoError(t, err)
	assert.Equal(t, "7", details.Room)
}
