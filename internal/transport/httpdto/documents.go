package httpdto

import "driftline/internal/domain"

type MessageListResponse struct {
	Messages []domain.Message `json:"messages"`
}

// PatchMessageRequest carries a granular message update: a content rewrite
// (which also marks the message edited) or a wholesale reactions replace.
type PatchMessageRequest struct {
	Content   *string   `json:"content,omitempty"`
	Reactions *[]string `json:"reactions,omitempty"`
}

type ChatListResponse struct {
	Chats []domain.Chat `json:"chats"`
}

type PostListResponse struct {
	Posts []domain.Post `json:"posts"`
}

// PatchPostRequest replaces the likes or comments token lists.
type PatchPostRequest struct {
	Likes    *[]string `json:"likes,omitempty"`
	Comments *[]string `json:"comments,omitempty"`
}

// PatchProfileRequest replaces the notification inbox or the follow graph.
type PatchProfileRequest struct {
	Notifications *[]string `json:"notifications,omitempty"`
	Followers     *[]string `json:"followers,omitempty"`
	Following     *[]string `json:"following,omitempty"`
}
