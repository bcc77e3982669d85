package domain

import "time"

// Chat is a two-participant message thread.
type Chat struct {
	ID           string     `json:"chatId" gorm:"primaryKey;column:chat_id"`
	Participants StringList `json:"participants" gorm:"column:participants;type:text"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"column:created_at"`
	DisplayName  string     `json:"chatName" gorm:"column:display_name"`
}

func (Chat) TableName() string {
	return "chats"
}

// HasParticipant reports whether userID is a member of the chat.
func (c Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
