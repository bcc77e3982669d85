package domain

import "time"

// Profile is the per-user information document: display data, the follow
// graph, and the user's notification inbox (flat tokens, see Notification).
type Profile struct {
	ID            string     `json:"$id" gorm:"primaryKey;column:profile_id"`
	UserID        string     `json:"userId" gorm:"column:user_id;uniqueIndex"`
	Name          string     `json:"name" gorm:"column:name"`
	Email         string     `json:"email" gorm:"column:email"`
	PasswordHash  string     `json:"-" gorm:"column:password_hash"`
	ProfilePicURL string     `json:"profilePicUrl" gorm:"column:profile_pic_url"`
	Followers     StringList `json:"followers" gorm:"column:followers;type:text"`
	Following     StringList `json:"following" gorm:"column:following;type:text"`
	Notifications StringList `json:"notificationMessages" gorm:"column:notifications;type:text"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"column:created_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
