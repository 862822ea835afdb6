package msgsync

import (
	"sort"

	"classchat/internal/models"
)

// State is the per-room-session sync state: the seen set and the identity
// of the local user. It is not safe for concurrent use; the Synchronizer
// serializes access to it.
type State struct {
	identity string
	seen     map[string]struct{}
	primed   bool
}

// NewState creates an empty state for a session of the given user.
func NewState(identity string) *State {
	return &State{
		identity: identity,
		seen:     make(map[string]struct{}),
	}
}

// Seen reports whether id has been recorded in this session.
func (st *State) Seen(id string) bool {
	_, ok := st.seen[id]
	return ok
}

// Len returns the size of the seen set.
func (st *State) Len() int {
	return len(st.seen)
}

// Primed reports whether the first batch of the session was reconciled.
func (st *State) Primed() bool {
	return st.primed
}

// Reconcile records every ID of batch and returns the messages that should
// be notified: never seen before and not sent by the local user. The first
// batch of a session only primes the seen set and returns nothing.
//
// Priming is tracked per session rather than inferred from an empty seen
// set: a room that was empty on entry still notifies its first message.
func (st *State) Reconcile(batch []models.Message) []models.Message {
	var fresh []models.Message
	for _, m := range batch {
		if m.ID == "" {
			continue
		}
		if _, ok := st.seen[m.ID]; ok {
			continue
		}
		st.seen[m.ID] = struct{}{}
		if st.primed && m.Sender != st.identity {
			fresh = append(fresh, m)
		}
	}
	st.primed = true
	return fresh
}

// Normalize returns a copy of batch ordered oldest-first. A newest-first
// batch is reversed before the stable sort so equal timestamps keep their
// arrival order.
func Normalize(batch []models.Message) []models.Message {
	out := make([]models.Message, len(batch))
	copy(out, batch)

	if n := len(out); n > 1 && out[0].Timestamp.After(out[n-1].Timestamp) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
