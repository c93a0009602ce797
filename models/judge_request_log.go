package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	ReasonUpstreamTimeout     = "upstream_timeout"
	ReasonUpstreamMalformed   = "upstream_malformed"
	ReasonUpstreamUnavailable = "upstream_unavailable"
)

// JudgeRequestLog is the durable record of one judgment request. A row is
// written with status processing before the model is called and moves to
// exactly one terminal state afterwards; Result is set only on completed,
// FailureReason only on failed.
type JudgeRequestLog struct {
	ID            uint   `gorm:"primaryKey"`
	RequestUUID   string `gorm:"type:varchar(36);uniqueIndex;not null"`
	UserID        *uint  `gorm:"index"`
	Story         string `gorm:"type:text;not null"`
	EvidenceCount int    `gorm:"not null;default:0"`
	EvidenceFiles datatypes.JSON
	Status        string `gorm:"type:varchar(20);not null;default:'processing';index"`
	Result        datatypes.JSON
	FailureReason *string `gorm:"type:varchar(40)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time

	User *AnonymousUser `gorm:"foreignKey:UserID"`
}

func (JudgeRequestLog) TableName() string { return "judge_request_log" }
