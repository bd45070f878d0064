package audit

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hospital-admin-dashboard/internal/models"
)

// DefaultLimit caps Recent when no limit is given.
const DefaultLimit = 50

// Store writes the audit trail to the dashboard database.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a Store.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Record saves entry. A failed write is logged and otherwise ignored so
// that auditing never fails the action being audited.
func (s *Store) Record(ctx context.Context, entry models.AuditEntry) {
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.logger.Error("Failed to write audit entry",
			zap.String("action", string(entry.Action)),
			zap.String("appointment_id", entry.AppointmentID),
			zap.Error(err),
		)
	}
}

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = DefaultLimit
	}
	var entries []models.AuditEntry
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
