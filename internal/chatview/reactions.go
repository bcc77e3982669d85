package chatview

import (
	"sync"

	"driftline/internal/domain"
)

// ReactionIndex is the derived mapping messageID -> userID -> reaction kind.
// It is rebuilt from the flattened token lists on load and patched
// incrementally from stream events. Malformed tokens are skipped, never
// fatal.
type ReactionIndex struct {
	mu    sync.RWMutex
	cells map[string]map[string]string
}

func NewReactionIndex() *ReactionIndex {
	return &ReactionIndex{cells: make(map[string]map[string]string)}
}

// RebuildFromTokens resets the index and refills it from every message's
// token list. Within one list the last token for a (message, user) pair
// wins, consistent with at-most-one-active-reaction-per-user.
func (x *ReactionIndex) RebuildFromTokens(messages []domain.Message) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.cells = make(map[string]map[string]string, len(messages))
	for _, m := range messages {
		x.applyTokensLocked(m.Reactions)
	}
}

// ReplaceMessageTokens resets a single message's row from an authoritative
// token list, so reactions removed upstream disappear here too.
func (x *ReactionIndex) ReplaceMessageTokens(messageID string, tokens []string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.cells, messageID)
	x.applyTokensLocked(tokens)
}

// ApplyPatch sets one cell. An empty kind encodes removal and clears the
// cell.
func (x *ReactionIndex) ApplyPatch(messageID, userID, kind string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if kind == "" {
		if row, ok := x.cells[messageID]; ok {
			delete(row, userID)
			if len(row) == 0 {
				delete(x.cells, messageID)
			}
		}
		return
	}
	row, ok := x.cells[messageID]
	if !ok {
		row = make(map[string]string)
		x.cells[messageID] = row
	}
	row[userID] = kind
}

// ClearMessage drops every cell for a deleted message.
func (x *ReactionIndex) ClearMessage(messageID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.cells, messageID)
}

// Get returns the active reaction kind for (messageID, userID).
func (x *ReactionIndex) Get(messageID, userID string) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	kind, ok := x.cells[messageID][userID]
	return kind, ok
}

// Snapshot returns a deep copy for rendering.
func (x *ReactionIndex) Snapshot() map[string]map[string]string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make(map[string]map[string]string, len(x.cells))
	for msgID, row := range x.cells {
		cp := make(map[string]string, len(row))
		for userID, kind := range row {
			cp[userID] = kind
		}
		out[msgID] = cp
	}
	return out
}

func (x *ReactionIndex) applyTokensLocked(tokens []string) {
	for _, token := range tokens {
		r, err := domain.ParseReaction(token)
		if err != nil {
			continue
		}
		row, ok := x.cells[r.MessageID]
		if !ok {
			row = make(map[string]string)
			x.cells[r.MessageID] = row
		}
		row[r.UserID] = r.Kind
	}
}
