package domain

import (
	"fmt"
	"strconv"
	"strings"

	driftline_errors "driftline/pkg/errors"
)

const notificationDelimiter = "|||"

// Notification is the typed form of one
// "id|||text|||read|||createdAt|||postId|||fromUserId|||toUserId" token as
// stored on a profile document.
type Notification struct {
	ID         string
	Text       string
	Read       bool
	CreatedAt  string
	PostID     string
	FromUserID string
	ToUserID   string
}

func (n Notification) Token() string {
	return strings.Join([]string{
		n.ID,
		n.Text,
		strconv.FormatBool(n.Read),
		n.CreatedAt,
		n.PostID,
		n.FromUserID,
		n.ToUserID,
	}, notificationDelimiter)
}

// ParseNotification decodes a stored notification token.
func ParseNotification(token string) (Notification, error) {
	parts := strings.Split(token, notificationDelimiter)
	if len(parts) != 7 {
		return Notification{}, fmt.Errorf("%w: %q", driftline_errors.ErrMalformedToken, token)
	}
	read, err := strconv.ParseBool(parts[2])
	if err != nil {
		return Notification{}, fmt.Errorf("%w: %q", driftline_errors.ErrMalformedToken, token)
	}
	return Notification{
		ID:         parts[0],
		Text:       parts[1],
		Read:       read,
		CreatedAt:  parts[3],
		PostID:     parts[4],
		FromUserID: parts[5],
		ToUserID:   parts[6],
	}, nil
}
