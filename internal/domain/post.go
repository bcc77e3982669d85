package domain

import (
	"fmt"
	"strings"
	"time"

	driftline_errors "driftline/pkg/errors"
)

const (
	PostStatusActive   = "active"
	PostStatusInactive = "inactive"
)

// Post is a blog entry. Likes holds liking user ids; Comments holds flat
// comment tokens (see Comment).
type Post struct {
	ID            string     `json:"postId" gorm:"primaryKey;column:post_id"`
	UserID        string     `json:"userId" gorm:"column:user_id;index"`
	Title         string     `json:"title" gorm:"column:title"`
	Content       string     `json:"content" gorm:"column:content"`
	FeaturedImage string     `json:"featuredImage" gorm:"column:featured_image"`
	Status        string     `json:"status" gorm:"column:status"`
	Likes         StringList `json:"likes" gorm:"column:likes;type:text"`
	Comments      StringList `json:"comments" gorm:"column:comments;type:text"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"column:created_at"`
}

func (Post) TableName() string {
	return "posts"
}

const commentDelimiter = "@@@"

// Comment is the typed form of one "userId@@@text@@@createdAt" token.
// CreatedAt doubles as the comment's identity within a post.
type Comment struct {
	UserID    string
	Text      string
	CreatedAt string
}

func (c Comment) Token() string {
	return c.UserID + commentDelimiter + c.Text + commentDelimiter + c.CreatedAt
}

// ParseComment decodes a comment token; the text part may itself contain the
// delimiter-free characters only, so exactly three parts are expected.
func ParseComment(token string) (Comment, error) {
	parts := strings.Split(token, commentDelimiter)
	if len(parts) != 3 {
		return Comment{}, fmt.Errorf("%w: %q", driftline_errors.ErrMalformedToken, token)
	}
	return Comment{UserID: parts[0], Text: parts[1], CreatedAt: parts[2]}, nil
}
