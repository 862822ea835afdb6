package msgsync

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRunning is returned by Refresh when no room session is active.
	ErrNotRunning = errors.New("msgsync: synchronizer is not running")

	// ErrEmptyRoom is returned by Start for an empty room ID.
	ErrEmptyRoom = errors.New("msgsync: empty room id")

	// ErrFetchFailure matches every *FetchError via errors.Is.
	ErrFetchFailure = errors.New("msgsync: fetch failure")
)

// FetchError reports a failed poll. The synchronizer keeps running after it.
type FetchError struct {
	RoomID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("msgsync: fetch room %s: %v", e.RoomID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }
