package chatview

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"driftline/internal/domain"
	"driftline/internal/feed"
	"driftline/internal/repository"
	driftline_errors "driftline/pkg/errors"
	"driftline/pkg/logger"
)

// State of the currently open conversation.
type State int

const (
	StateClosed State = iota
	StateLoading
	StateLive
)

// ImageUploader stores a chat image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Reconciler merges the bulk fetch and the change feed into the Message
// Store and Reaction Index for one conversation at a time, and carries the
// two user-facing mutations. The document store stays authoritative; local
// state is a cache that tolerates being briefly stale.
type Reconciler struct {
	messages repository.MessageRepository
	chats    repository.ChatRepository
	sub      *StreamSubscriber
	uploader ImageUploader
	log      *logger.Logger

	mu         sync.Mutex
	state      State
	epoch      uint64
	chatID     string
	userID     string
	receiverID string
	store      *MessageStore
	index      *ReactionIndex
	cancels    []feed.CancelFunc
	onChange   func()
}

func NewReconciler(messages repository.MessageRepository, chats repository.ChatRepository, sub *StreamSubscriber, uploader ImageUploader, log *logger.Logger) *Reconciler {
	return &Reconciler{
		messages: messages,
		chats:    chats,
		sub:      sub,
		uploader: uploader,
		log:      log,
		store:    NewMessageStore(),
		index:    NewReactionIndex(),
	}
}

// SetOnChange installs the render callback invoked after every applied
// mutation. Must be set before Open.
func (r *Reconciler) SetOnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Open loads chatID for userID: one bulk fetch, a wholesale store load, a
// reaction rebuild, then both stream subscriptions. Any previously open
// conversation is closed first, its subscriptions cancelled before the new
// state is constructed. Returns a teardown function.
//
// A failed bulk fetch leaves the attempt closed; no retry is made here.
func (r *Reconciler) Open(ctx context.Context, chatID, userID string) (func(), error) {
	r.mu.Lock()
	r.closeLocked()
	r.epoch++
	epoch := r.epoch
	r.state = StateLoading
	r.chatID = chatID
	r.userID = userID
	r.store = NewMessageStore()
	r.index = NewReactionIndex()
	store, index := r.store, r.index
	r.mu.Unlock()

	chat, err := r.chats.GetByID(ctx, chatID)
	if err != nil {
		r.failOpen(epoch)
		return nil, fmt.Errorf("open chat %s: %w", chatID, err)
	}
	if !chat.HasParticipant(userID) {
		r.failOpen(epoch)
		return nil, fmt.Errorf("open chat %s: %w", chatID, driftline_errors.ErrForbidden)
	}

	msgs, err := r.messages.ListByChat(ctx, chatID)
	if err != nil {
		r.failOpen(epoch)
		return nil, fmt.Errorf("bulk fetch for chat %s: %w", chatID, err)
	}
	store.Load(msgs)
	index.RebuildFromTokens(msgs)

	cancelMsgs, err := r.sub.OnMessageEvent(ctx, chatID, func(ev MessageEvent) {
		r.applyMessageEvent(epoch, ev)
	})
	if err != nil {
		r.failOpen(epoch)
		return nil, fmt.Errorf("subscribe messages for chat %s: %w", chatID, err)
	}
	cancelReactions, err := r.sub.OnReactionEvent(ctx, chatID, func(rx domain.Reaction) {
		r.applyReaction(epoch, rx)
	})
	if err != nil {
		cancelMsgs()
		r.failOpen(epoch)
		return nil, fmt.Errorf("subscribe reactions for chat %s: %w", chatID, err)
	}

	r.mu.Lock()
	if r.epoch != epoch {
		// A concurrent Open superseded this attempt.
		r.mu.Unlock()
		cancelMsgs()
		cancelReactions()
		return nil, driftline_errors.ErrClosed
	}
	r.receiverID = otherParticipant(chat, userID)
	r.cancels = []feed.CancelFunc{cancelMsgs, cancelReactions}
	r.state = StateLive
	r.mu.Unlock()

	r.notifyChange()
	return func() { r.closeEpoch(epoch) }, nil
}

// Close tears down the open conversation, cancelling both subscriptions
// before the state is discarded.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closeLocked()
	r.mu.Unlock()
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Messages returns the render snapshot of the message view.
func (r *Reconciler) Messages() []domain.Message {
	r.mu.Lock()
	store := r.store
	r.mu.Unlock()
	return store.Messages()
}

// Reactions returns the render snapshot of the reaction index.
func (r *Reconciler) Reactions() map[string]map[string]string {
	r.mu.Lock()
	index := r.index
	r.mu.Unlock()
	return index.Snapshot()
}

// SendMessage persists a new text message. No optimistic insert happens
// here: the message becomes visible once the feed echoes it back, the same
// path every other participant sees it on.
func (r *Reconciler) SendMessage(ctx context.Context, content string) (domain.Message, error) {
	return r.send(ctx, content, domain.MessageKindText, "")
}

// SendImage uploads the image to the blob store first, then persists an
// image message referencing it.
func (r *Reconciler) SendImage(ctx context.Context, caption string, body io.Reader, contentType string) (domain.Message, error) {
	r.mu.Lock()
	chatID := r.chatID
	live := r.state == StateLive
	r.mu.Unlock()
	if !live {
		return domain.Message{}, driftline_errors.ErrClosed
	}

	key := fmt.Sprintf("chat/%s/%s", chatID, domain.NewID())
	url, err := r.uploader.Upload(ctx, key, body, contentType)
	if err != nil {
		return domain.Message{}, fmt.Errorf("upload chat image: %w", err)
	}
	return r.send(ctx, caption, domain.MessageKindImage, url)
}

func (r *Reconciler) send(ctx context.Context, content string, kind domain.MessageKind, imageURL string) (domain.Message, error) {
	r.mu.Lock()
	if r.state != StateLive {
		r.mu.Unlock()
		return domain.Message{}, driftline_errors.ErrClosed
	}
	msg := domain.Message{
		ID:         domain.NewID(),
		ChatID:     r.chatID,
		SenderID:   r.userID,
		ReceiverID: r.receiverID,
		Content:    content,
		Kind:       kind,
		ImageURL:   imageURL,
		Timestamp:  time.Now().UTC(),
		Status:     domain.MessageStatusSent,
		Reactions:  domain.StringList{},
	}
	r.mu.Unlock()

	if err := r.messages.Create(ctx, &msg); err != nil {
		return domain.Message{}, fmt.Errorf("send message: %w", err)
	}
	return msg, nil
}

// SetReaction applies the toggle rule for the current user: requesting the
// kind already held removes it, any other kind replaces the previous token.
// The index is patched optimistically from the authoritative token list the
// write produced; on write failure the message is re-synced from the store
// instead of leaving stale optimistic state behind.
func (r *Reconciler) SetReaction(ctx context.Context, messageID, kind string) error {
	r.mu.Lock()
	if r.state != StateLive {
		r.mu.Unlock()
		return driftline_errors.ErrClosed
	}
	epoch := r.epoch
	userID := r.userID
	index := r.index
	r.mu.Unlock()

	current, has := index.Get(messageID, userID)
	removing := kind == "" || (has && current == kind)

	msg, err := r.messages.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("set reaction on %s: %w", messageID, err)
	}

	var tokens []string
	if removing {
		tokens = domain.RemoveUserReactions(msg.Reactions, messageID, userID)
	} else {
		tokens = domain.ReplaceReaction(msg.Reactions, messageID, userID, kind)
	}

	if err := r.messages.UpdateReactions(ctx, messageID, tokens); err != nil {
		r.resync(ctx, epoch, messageID)
		return fmt.Errorf("persist reaction on %s: %w", messageID, err)
	}

	r.mu.Lock()
	if r.epoch == epoch {
		r.index.ReplaceMessageTokens(messageID, tokens)
	}
	r.mu.Unlock()
	r.notifyChange()
	return nil
}

// EditMessage rewrites a message body; the edit reaches the store via the
// feed echo like any other update.
func (r *Reconciler) EditMessage(ctx context.Context, messageID, content string) error {
	if err := r.messages.UpdateContent(ctx, messageID, content); err != nil {
		return fmt.Errorf("edit message %s: %w", messageID, err)
	}
	return nil
}

// DeleteMessage removes a message document.
func (r *Reconciler) DeleteMessage(ctx context.Context, messageID string) error {
	if err := r.messages.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("delete message %s: %w", messageID, err)
	}
	return nil
}

// applyMessageEvent is the stream entry point for message documents. The
// epoch guard keeps a late delivery from mutating a successor
// conversation's state.
func (r *Reconciler) applyMessageEvent(epoch uint64, ev MessageEvent) {
	r.mu.Lock()
	if r.epoch != epoch || r.state != StateLive {
		r.mu.Unlock()
		return
	}
	store, index := r.store, r.index
	r.mu.Unlock()

	changed := false
	switch ev.Type {
	case MessageCreated:
		// Idempotent append: the sole defense against the bulk fetch and
		// the stream racing on first load.
		changed = store.Append(ev.Message)
	case MessageUpdated:
		if store.Update(ev.Message) {
			index.ReplaceMessageTokens(ev.Message.ID, ev.Message.Reactions)
			changed = true
		} else {
			// Update outran its create.
			changed = store.Append(ev.Message)
			if changed {
				index.ReplaceMessageTokens(ev.Message.ID, ev.Message.Reactions)
			}
		}
	case MessageDeleted:
		if store.Remove(ev.Message.ID) {
			index.ClearMessage(ev.Message.ID)
			changed = true
		}
	}
	if changed {
		r.notifyChange()
	}
}

func (r *Reconciler) applyReaction(epoch uint64, rx domain.Reaction) {
	r.mu.Lock()
	if r.epoch != epoch || r.state != StateLive {
		r.mu.Unlock()
		return
	}
	index := r.index
	r.mu.Unlock()

	index.ApplyPatch(rx.MessageID, rx.UserID, rx.Kind)
	r.notifyChange()
}

// resync refreshes one message from the document store after a failed
// optimistic write.
func (r *Reconciler) resync(ctx context.Context, epoch uint64, messageID string) {
	msg, err := r.messages.GetByID(ctx, messageID)

	r.mu.Lock()
	if r.epoch != epoch || r.state != StateLive {
		r.mu.Unlock()
		return
	}
	store, index := r.store, r.index
	r.mu.Unlock()

	if err != nil {
		if r.log != nil {
			r.log.Warnf("resync of message %s failed: %v", messageID, err)
		}
		return
	}
	store.Update(msg)
	index.ReplaceMessageTokens(msg.ID, msg.Reactions)
	r.notifyChange()
}

func (r *Reconciler) failOpen(epoch uint64) {
	r.mu.Lock()
	if r.epoch == epoch {
		r.state = StateClosed
	}
	r.mu.Unlock()
}

func (r *Reconciler) closeEpoch(epoch uint64) {
	r.mu.Lock()
	if r.epoch != epoch {
		r.mu.Unlock()
		return
	}
	r.closeLocked()
	r.mu.Unlock()
}

// closeLocked cancels subscriptions and discards state. Caller holds r.mu.
func (r *Reconciler) closeLocked() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
	r.state = StateClosed
	r.chatID = ""
	r.receiverID = ""
	r.store = NewMessageStore()
	r.index = NewReactionIndex()
}

func (r *Reconciler) notifyChange() {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func otherParticipant(chat domain.Chat, userID string) string {
	for _, p := range chat.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
