package services

import (
	"context"
	"strings"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/validation"
)

// EventService handles the club calendar
type EventService struct {
	eventRepo *repositories.EventRepository
}

// NewEventService creates a new event service
func NewEventService(eventRepo *repositories.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

// EventInput is the body of create and update
type EventInput struct {
	Nombre      string `json:"nombre" validate:"required,max=120"`
	Descripcion string `json:"descripcion" validate:"max=2000"`
	Fecha       string `json:"fecha" validate:"required"`
	Tipo        string `json:"tipo" validate:"max=30"`
	Estado      string `json:"estado"`
}

func (in *EventInput) apply(e *models.Event) error {
	in.Nombre = strings.TrimSpace(in.Nombre)
	if err := validation.Struct(in); err != nil {
		return err
	}
	fecha, err := parseDate("fecha", in.Fecha)
	if err != nil {
		return err
	}
	if fecha == nil {
		return domain.Invalidf("El campo fecha es obligatorio")
	}

	estado := strings.ToUpper(strings.TrimSpace(in.Estado))
	if estado == "" {
		estado = domain.EventUpcoming
	}
	if !domain.IsValidEventStatus(estado) {
		return domain.ErrInvalidEventStatus
	}

	e.Nombre = in.Nombre
	e.Descripcion = strings.TrimSpace(in.Descripcion)
	e.Fecha = *fecha
	e.Tipo = firstNonEmpty(strings.ToUpper(strings.TrimSpace(in.Tipo)), domain.DefaultEventType)
	e.Estado = estado
	return nil
}

// Create creates an event
func (s *EventService) Create(ctx context.Context, in EventInput) (*models.Event, error) {
	event := &models.Event{}
	if err := in.apply(event); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// List lists events, latest first
func (s *EventService) List(ctx context.Context, filter repositories.EventFilter) ([]models.Event, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !domain.IsValidEventStatus(filter.Status) {
		return nil, domain.ErrInvalidEventStatus
	}
	filter.Tipo = strings.ToUpper(strings.TrimSpace(filter.Tipo))

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// GetByID gets an event by ID
func (s *EventService) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// Update replaces an event's fields
func (s *EventService) Update(ctx context.Context, id uint, in EventInput) (*models.Event, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(event); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event
func (s *EventService) Delete(ctx context.Context, id uint) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if repositories.IsNotFound(err) {
			return domain.ErrEventNotFound
		}
		return err
	}
	return nil
}
