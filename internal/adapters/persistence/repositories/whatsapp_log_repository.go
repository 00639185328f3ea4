package repositories

import (
	"context"

	"natillera-miahorro/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// WhatsappLogRepository records chat delivery attempts
type WhatsappLogRepository struct {
	db *gorm.DB
}

// NewWhatsappLogRepository creates a new delivery log repository
func NewWhatsappLogRepository(db *gorm.DB) *WhatsappLogRepository {
	return &WhatsappLogRepository{db: db}
}

// Create appends a delivery attempt
func (r *WhatsappLogRepository) Create(ctx context.Context, entry *models.WhatsappLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List pages through attempts, newest first
func (r *WhatsappLogRepository) List(ctx context.Context, offset, limit int) ([]models.WhatsappLog, int64, error) {
	var (
		entries []models.WhatsappLog
		total   int64
	)

	if err := r.db.WithContext(ctx).Model(&models.WhatsappLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error

	return entries, total, err
}
