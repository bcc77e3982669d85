package chatview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftline/internal/domain"
)

func msgAt(id string, ts time.Time) domain.Message {
	return domain.Message{ID: id, ChatID: "c1", Content: id, Timestamp: ts}
}

func storeIDs(s *MessageStore) []string {
	msgs := s.Messages()
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

func TestLoadDeduplicatesAndSorts(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s := NewMessageStore()

	s.Load([]domain.Message{
		msgAt("m2", base.Add(2*time.Second)),
		msgAt("m1", base.Add(time.Second)),
		msgAt("m2", base.Add(5*time.Second)), // duplicate, first wins
		msgAt("m3", base.Add(3*time.Second)),
	})

	assert.Equal(t, []string{"m1", "m2", "m3"}, storeIDs(s))
	got, ok := s.Get("m2")
	require.True(t, ok)
	assert.Equal(t, base.Add(2*time.Second), got.Timestamp)
}

func TestAppendIsIdempotent(t *testing.T) {
	base := time.Now().UTC()
	s := NewMessageStore()

	assert.True(t, s.Append(msgAt("m1", base)))
	assert.False(t, s.Append(msgAt("m1", base.Add(time.Minute))))
	assert.Equal(t, 1, s.Len())
}

func TestAppendKeepsTimestampOrder(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s := NewMessageStore()

	// Stream delivery out of send order.
	s.Append(msgAt("m3", base.Add(3*time.Second)))
	s.Append(msgAt("m1", base.Add(time.Second)))
	s.Append(msgAt("m2", base.Add(2*time.Second)))

	assert.Equal(t, []string{"m1", "m2", "m3"}, storeIDs(s))
}

func TestBulkAndStreamRaceBothOrders(t *testing.T) {
	base := time.Now().UTC()
	fresh := msgAt("m1", base)

	// Stream event first, bulk fetch second: Load replaces wholesale, the
	// stream echo re-applied after it is deduplicated.
	s := NewMessageStore()
	s.Append(fresh)
	s.Load([]domain.Message{fresh})
	assert.False(t, s.Append(fresh))
	assert.Equal(t, 1, s.Len())

	// Bulk fetch first, stream echo second.
	s = NewMessageStore()
	s.Load([]domain.Message{fresh})
	assert.False(t, s.Append(fresh))
	assert.Equal(t, 1, s.Len())
}

func TestUpdateIgnoresUnknownID(t *testing.T) {
	s := NewMessageStore()
	assert.False(t, s.Update(msgAt("ghost", time.Now())))
	assert.Equal(t, 0, s.Len())
}

func TestUpdateReplacesEntry(t *testing.T) {
	base := time.Now().UTC()
	s := NewMessageStore()
	s.Append(msgAt("m1", base))

	edited := msgAt("m1", base)
	edited.Content = "rewritten"
	edited.Edited = true
	require.True(t, s.Update(edited))

	got, ok := s.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "rewritten", got.Content)
	assert.True(t, got.Edited)
}

func TestRemove(t *testing.T) {
	s := NewMessageStore()
	s.Append(msgAt("m1", time.Now()))

	assert.True(t, s.Remove("m1"))
	assert.False(t, s.Remove("m1"))
	assert.False(t, s.Contains("m1"))
	assert.Equal(t, 0, s.Len())
}

func TestMessagesReturnsSnapshot(t *testing.T) {
	s := NewMessageStore()
	s.Append(msgAt("m1", time.Now()))

	snap := s.Messages()
	snap[0].Content = "mutated"

	got, ok := s.Get("m1")
	require.True(t, ok)
	assert.Equal(t, "m1", got.Content)
}
