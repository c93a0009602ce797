package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voidswing/ff-l/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type IdentityService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewIdentityService(db *gorm.DB, log *zap.Logger) *IdentityService {
	return &IdentityService{db: db, log: log}
}

// Resolve returns the id of the AnonymousUser for udid, creating the record
// on first sight. An empty udid resolves to no user and is not an error.
func (s *IdentityService) Resolve(udid string) (*uint, error) {
	udid = strings.TrimSpace(udid)
	if udid == "" {
		return nil, nil
	}

	var user models.AnonymousUser
	err := s.db.Where("udid = ?", udid).First(&user).Error
	if err == nil {
		return &user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	now := time.Now().UTC()
	user = models.AnonymousUser{UDID: udid, LastSeenAt: now}
	if err := s.db.Create(&user).Error; err != nil {
		// Another request may have created the same UDID concurrently.
		var existing models.AnonymousUser
		if lookupErr := s.db.Where("udid = ?", udid).First(&existing).Error; lookupErr == nil {
			return &existing.ID, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user.ID, nil
}

// Login creates the user for udid on first sight and touches LastSeenAt
// otherwise.
func (s *IdentityService) Login(udid string) (*models.AnonymousUser, error) {
	udid = strings.TrimSpace(udid)

	now := time.Now().UTC()
	var user models.AnonymousUser
	err := s.db.Where("udid = ?", udid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.AnonymousUser{UDID: udid, LastSeenAt: now}
		if createErr := s.db.Create(&user).Error; createErr != nil {
			return nil, fmt.Errorf("create user: %w", createErr)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := s.db.Model(&user).Update("last_seen_at", now).Error; err != nil {
		return nil, fmt.Errorf("touch user: %w", err)
	}
	user.LastSeenAt = now
	return &user, nil
}
