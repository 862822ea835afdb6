package msgsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"classchat/internal/models"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func msg(id, sender string, minute int) models.Message {
	return models.Message{
		ID:        id,
		Sender:    sender,
		Content:   "msg " + id,
		Type:      models.TypeText,
		Timestamp: t0.Add(time.Duration(minute) * time.Minute),
	}
}

func ids(messages []models.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.ID)
	}
	return out
}

func TestReconcile(t *testing.T) {
	st := NewState("alice")
	assert.False(t, st.Primed())

	// room entry: history is recorded, nothing is notified
	fresh := st.Reconcile([]models.Message{msg("1", "alice", 1), msg("2", "bob", 2)})
	assert.Empty(t, fresh)
	assert.True(t, st.Primed())
	assert.Equal(t, 2, st.Len())
	assert.True(t, st.Seen("1"))
	assert.True(t, st.Seen("2"))

	fresh = st.Reconcile([]models.Message{msg("1", "alice", 1), msg("2", "bob", 2), msg("3", "bob", 3)})
	assert.Equal(t, []string{"3"}, ids(fresh))
	assert.Equal(t, 3, st.Len())

	// own message is recorded but not notified
	fresh = st.Reconcile([]models.Message{msg("2", "bob", 2), msg("3", "bob", 3), msg("4", "alice", 4)})
	assert.Empty(t, fresh)
	assert.Equal(t, 4, st.Len())
	assert.True(t, st.Seen("4"))
}

func TestReconcileNeverShrinks(t *testing.T) {
	st := NewState("alice")
	batches := [][]models.Message{
		{msg("1", "bob", 1), msg("2", "bob", 2)},
		{msg("2", "bob", 2)},
		{},
		{msg("3", "carol", 3)},
		{msg("1", "bob", 1)},
	}

	last := 0
	for _, b := range batches {
		st.Reconcile(b)
		assert.GreaterOrEqual(t, st.Len(), last)
		last = st.Len()
	}
	assert.Equal(t, 3, last)
}

func TestReconcileEmptyFirstBatchPrimes(t *testing.T) {
	st := NewState("alice")
	assert.Empty(t, st.Reconcile(nil))
	assert.True(t, st.Primed())

	fresh := st.Reconcile([]models.Message{msg("1", "bob", 1)})
	assert.Equal(t, []string{"1"}, ids(fresh))
}

func TestReconcileDuplicateInBatch(t *testing.T) {
	st := NewState("alice")
	st.Reconcile(nil)

	fresh := st.Reconcile([]models.Message{msg("5", "bob", 1), msg("5", "bob", 1)})
	assert.Equal(t, []string{"5"}, ids(fresh))
}

func TestReconcileSkipsEmptyID(t *testing.T) {
	st := NewState("alice")
	st.Reconcile(nil)

	fresh := st.Reconcile([]models.Message{msg("", "bob", 1), msg("6", "bob", 2)})
	assert.Equal(t, []string{"6"}, ids(fresh))
	assert.Equal(t, 1, st.Len())
	assert.False(t, st.Seen(""))
}

func TestNormalize(t *testing.T) {
	newestFirst := []models.Message{msg("3", "bob", 3), msg("2", "bob", 2), msg("1", "bob", 1)}
	out := Normalize(newestFirst)
	assert.Equal(t, []string{"1", "2", "3"}, ids(out))
	// input is left untouched
	assert.Equal(t, []string{"3", "2", "1"}, ids(newestFirst))

	oldestFirst := []models.Message{msg("1", "bob", 1), msg("2", "bob", 2)}
	assert.Equal(t, []string{"1", "2"}, ids(Normalize(oldestFirst)))

	// equal timestamps keep arrival order once the page is flipped
	tied := []models.Message{msg("4", "bob", 5), msg("3", "bob", 2), msg("2", "bob", 2), msg("1", "bob", 1)}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Normalize(tied)))

	assert.Empty(t, Normalize(nil))
}
