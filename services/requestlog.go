package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voidswing/ff-l/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RequestLogService owns the judge_request_log state machine:
// processing -> completed | failed, exactly one terminal transition per row.
type RequestLogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRequestLogService(db *gorm.DB, log *zap.Logger) *RequestLogService {
	return &RequestLogService{db: db, log: log}
}

// Create inserts the row in processing. The caller must not invoke the model
// before this returns.
func (s *RequestLogService) Create(story string, userID *uint, evidence []string) (*models.JudgeRequestLog, error) {
	row := models.JudgeRequestLog{
		RequestUUID:   uuid.New().String(),
		UserID:        userID,
		Story:         story,
		EvidenceCount: len(evidence),
		Status:        models.StatusProcessing,
	}
	if len(evidence) > 0 {
		raw, err := json.Marshal(evidence)
		if err != nil {
			return nil, fmt.Errorf("encode evidence list: %w", err)
		}
		row.EvidenceFiles = datatypes.JSON(raw)
	}

	if err := s.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create request log: %w", err)
	}
	return &row, nil
}

func (s *RequestLogService) MarkCompleted(id uint, result JudgmentResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode judgment result: %w", err)
	}
	return s.terminate(id, map[string]interface{}{
		"status":       models.StatusCompleted,
		"result":       datatypes.JSON(raw),
		"completed_at": time.Now().UTC(),
	})
}

func (s *RequestLogService) MarkFailed(id uint, reason string) error {
	return s.terminate(id, map[string]interface{}{
		"status":         models.StatusFailed,
		"failure_reason": reason,
		"completed_at":   time.Now().UTC(),
	})
}

// terminate flips a processing row to its terminal state. The status guard in
// the WHERE clause makes terminal states immutable: a duplicate completion
// signal matches zero rows and is logged as a logic error, never surfaced.
func (s *RequestLogService) terminate(id uint, updates map[string]interface{}) error {
	res := s.db.Model(&models.JudgeRequestLog{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update request log %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		s.log.Error("request log is already terminal, ignoring transition",
			zap.Uint("id", id),
			zap.Any("status", updates["status"]))
	}
	return nil
}

func (s *RequestLogService) FindByUUID(requestUUID string) (*models.JudgeRequestLog, error) {
	var row models.JudgeRequestLog
	if err := s.db.Where("request_uuid = ?", requestUUID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
