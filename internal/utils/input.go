package utils

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SessionDetails holds who is chatting and in which room
type SessionDetails struct {
	Username string
	Room     string
	Rooms    []string // offered when Room is empty
}

// PromptMissing asks for every empty field of details on in, writing the
// prompts to out
func PromptMissing(in io.Reader, out io.Writer, details SessionDetails) (SessionDetails, error) {
	reader := bufio.NewReader(in)

	if details.Username == "" {
		fmt.Fprint(out, "Enter your username: ")
		username, err := readLine(reader)
		if err != nil {
			return details, err
		}
		if username == "" {
			return details, fmt.Errorf("username is required")
		}
		details.Username = username
	}

	if details.Room == "" {
		if len(details.Rooms) > 0 {
			fmt.Fprintln(out, "Available rooms:")
			for i, name := range details.Rooms {
				fmt.Fprintf(out, "  %d) %s\n", i+1, name)
			}
			fmt.Fprint(out, "Enter a number or the room ID to join: ")
		} else {
			fmt.Fprint(out, "Enter the room ID to join: ")
		}
		room, err := readLine(reader)
		if err != nil {
			return details, err
		}
		if room == "" {
			return details, fmt.Errorf("room is required")
		}
		details.Room = pickRoom(room, details.Rooms)
	}

	return details, nil
}

// readLine reads one trimmed line; a final line without newline is accepted
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// pickRoom resolves a 1-based index into rooms; anything else is a room ID
func pickRoom(answer string, rooms []string) string {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(rooms) {
		return rooms[n-1]
	}
	return answer
}
