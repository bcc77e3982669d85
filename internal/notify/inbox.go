package notify

import (
	"sort"
	"sync"

	"driftline/internal/domain"
)

// Inbox is the client-side notification view: deduplicated by id, newest
// first. Like the chat view state, it is a cache over the stored tokens,
// never authoritative.
type Inbox struct {
	mu    sync.RWMutex
	items []domain.Notification
	seen  map[string]struct{}
}

func NewInbox() *Inbox {
	return &Inbox{seen: make(map[string]struct{})}
}

// Load replaces the inbox wholesale.
func (b *Inbox) Load(ns []domain.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = b.items[:0]
	b.seen = make(map[string]struct{}, len(ns))
	for _, n := range ns {
		if _, dup := b.seen[n.ID]; dup {
			continue
		}
		b.seen[n.ID] = struct{}{}
		b.items = append(b.items, n)
	}
	b.sortLocked()
}

// Add inserts a notification unless one with the same id is present.
func (b *Inbox) Add(n domain.Notification) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, dup := b.seen[n.ID]; dup {
		return false
	}
	b.seen[n.ID] = struct{}{}
	b.items = append(b.items, n)
	b.sortLocked()
	return true
}

// Remove drops the notification with the given id.
func (b *Inbox) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.seen[id]; !ok {
		return false
	}
	delete(b.seen, id)
	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	return true
}

// Unread counts notifications not yet marked read.
func (b *Inbox) Unread() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, n := range b.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// All returns a snapshot copy, newest first.
func (b *Inbox) All() []domain.Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Notification, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Inbox) sortLocked() {
	sort.SliceStable(b.items, func(i, j int) bool {
		return b.items[i].CreatedAt > b.items[j].CreatedAt
	})
}
