package models

import "time"

// AnonymousUser correlates requests from the same device via a client-supplied
// UDID. It carries no real identity and is never deleted.
type AnonymousUser struct {
	ID         uint   `gorm:"primaryKey"`
	UDID       string `gorm:"column:udid;type:varchar(64);uniqueIndex;not null"`
	CreatedAt  time.Time
	LastSeenAt time.Time
}

func (AnonymousUser) TableName() string { return "app_user" }
