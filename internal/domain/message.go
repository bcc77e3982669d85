package domain

import "time"

type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindImage MessageKind = "image"
)

const MessageStatusSent = "sent"

// Message represents one entry in a conversation. Reactions is the flat
// token list as stored by the backend; use the Reaction codec to work with
// it in memory.
type Message struct {
	ID         string      `json:"messageId" gorm:"primaryKey;column:message_id"`
	ChatID     string      `json:"chatId" gorm:"column:chat_id;index"`
	SenderID   string      `json:"senderId" gorm:"column:sender_id"`
	ReceiverID string      `json:"receiverId" gorm:"column:receiver_id"`
	Content    string      `json:"content" gorm:"column:content"`
	Kind       MessageKind `json:"kind" gorm:"column:kind"`
	ImageURL   string      `json:"imageUrl,omitempty" gorm:"column:image_url"`
	Timestamp  time.Time   `json:"timestamp" gorm:"column:timestamp"`
	Edited     bool        `json:"edited" gorm:"column:edited"`
	Status     string      `json:"status" gorm:"column:status"`
	Reactions  StringList  `json:"reactions" gorm:"column:reactions;type:text"`
}

func (Message) TableName() string {
	return "messages"
}

// ReactionKinds are the reaction kinds the reference client offers.
var ReactionKinds = []string{"thumbsup", "heart", "laugh", "sad", "angry", "surprised", "like", "thumbsdown"}
