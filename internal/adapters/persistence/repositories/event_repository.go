package repositories

import (
	"context"

	"natillera-miahorro/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// EventFilter narrows the event list
type EventFilter struct {
	Status string
	Tipo   string
}

// EventRepository handles event data access
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetByID gets an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List lists events by date, newest first
func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	var events []models.Event
	q := r.db.WithContext(ctx)
	if filter.Status != "" {
		q = q.Where("estado = ?", filter.Status)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	err := q.Order("fecha DESC, id DESC").Find(&events).Error
	return events, err
}

// Update saves every column of event
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByStatus counts events in estado
func (r *EventRepository) CountByStatus(ctx context.Context, estado string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Where("estado = ?", estado).Count(&count).Error
	return count, err
}

// Latest lists the most recently dated events
func (r *EventRepository) Latest(ctx context.Context, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).Order("fecha DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}
