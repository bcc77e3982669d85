package domain

import (
	"fmt"
	"strings"

	driftline_errors "driftline/pkg/errors"
)

const reactionDelimiter = "-"

// Reaction is the in-memory form of one reaction token. The backend stores
// reactions as flat "messageId-userId-kind" strings; this type keeps the
// delimiter encoding out of everything above the codec.
type Reaction struct {
	MessageID string
	UserID    string
	Kind      string
}

// Token encodes the reaction into its stored string form.
func (r Reaction) Token() string {
	return fmt.Sprintf("%s%s%s%s%s", r.MessageID, reactionDelimiter, r.UserID, reactionDelimiter, r.Kind)
}

// ParseReaction decodes a stored token. Tokens that do not split into
// exactly three non-empty parts are malformed.
func ParseReaction(token string) (Reaction, error) {
	parts := strings.Split(token, reactionDelimiter)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Reaction{}, fmt.Errorf("%w: %q", driftline_errors.ErrMalformedToken, token)
	}
	return Reaction{MessageID: parts[0], UserID: parts[1], Kind: parts[2]}, nil
}

// reactionPrefix matches any token belonging to (messageID, userID).
func reactionPrefix(messageID, userID string) string {
	return messageID + reactionDelimiter + userID + reactionDelimiter
}

// ReplaceReaction returns tokens with any previous token for (messageID,
// userID) removed and the new token appended. This is the outbound encoding
// rule: a user holds at most one active reaction per message.
func ReplaceReaction(tokens []string, messageID, userID, kind string) []string {
	out := RemoveUserReactions(tokens, messageID, userID)
	return append(out, Reaction{MessageID: messageID, UserID: userID, Kind: kind}.Token())
}

// RemoveUserReactions filters out every token for (messageID, userID).
func RemoveUserReactions(tokens []string, messageID, userID string) []string {
	prefix := reactionPrefix(messageID, userID)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if strings.HasPrefix(t, prefix) {
			continue
		}
		out = append(out, t)
	}
	return out
}
