package chatview

import (
	"sort"
	"sync"

	"driftline/internal/domain"
)

// MessageStore holds the ordered message view for one open conversation.
// It deduplicates by message id; the transport offers no such guarantee.
// Messages are kept ordered by timestamp (stable for ties), re-established
// after every mutation, so interleaved bulk-fetch and stream arrivals render
// in send order.
type MessageStore struct {
	mu       sync.RWMutex
	messages []domain.Message
	seen     map[string]struct{}
}

func NewMessageStore() *MessageStore {
	return &MessageStore{seen: make(map[string]struct{})}
}

// Load replaces the store wholesale with the bulk-fetch result. Duplicate
// ids within the input keep the first occurrence.
func (s *MessageStore) Load(messages []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = s.messages[:0]
	s.seen = make(map[string]struct{}, len(messages))
	for _, m := range messages {
		if _, dup := s.seen[m.ID]; dup {
			continue
		}
		s.seen[m.ID] = struct{}{}
		s.messages = append(s.messages, m)
	}
	s.sortLocked()
}

// Append inserts a message unless an entry with the same id already exists.
// Returns false on the silent no-op.
func (s *MessageStore) Append(m domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[m.ID]; dup {
		return false
	}
	s.seen[m.ID] = struct{}{}
	s.messages = append(s.messages, m)
	s.sortLocked()
	return true
}

// Update replaces the entry sharing m's id. Unknown ids are ignored: an
// update racing ahead of its create carries no entry to patch.
func (s *MessageStore) Update(m domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[m.ID]; !ok {
		return false
	}
	for i := range s.messages {
		if s.messages[i].ID == m.ID {
			s.messages[i] = m
			break
		}
	}
	s.sortLocked()
	return true
}

// Remove drops the entry with the given id.
func (s *MessageStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; !ok {
		return false
	}
	delete(s.seen, id)
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			break
		}
	}
	return true
}

func (s *MessageStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok
}

func (s *MessageStore) Get(id string) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.seen[id]; !ok {
		return domain.Message{}, false
	}
	for i := range s.messages {
		if s.messages[i].ID == id {
			return s.messages[i], true
		}
	}
	return domain.Message{}, false
}

// Messages returns a snapshot copy for rendering.
func (s *MessageStore) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *MessageStore) sortLocked() {
	sort.SliceStable(s.messages, func(i, j int) bool {
		return s.messages[i].Timestamp.Before(s.messages[j].Timestamp)
	})
}
