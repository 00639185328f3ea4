package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/validation"

	"gorm.io/gorm"
)

// MemberService handles member registration and maintenance
type MemberService struct {
	db          *gorm.DB
	memberRepo  repositories.MemberRepository
	paymentRepo *repositories.PaymentRepository
}

// NewMemberService creates a new member service
func NewMemberService(db *gorm.DB, memberRepo repositories.MemberRepository, paymentRepo *repositories.PaymentRepository) *MemberService {
	return &MemberService{
		db:          db,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
	}
}

// MemberInput is the editable part of a member
type MemberInput struct {
	Documento       string `json:"documento" validate:"required,max=30"`
	Nombre1         string `json:"nombre1" validate:"required,max=60"`
	Nombre2         string `json:"nombre2" validate:"max=60"`
	Apellido1       string `json:"apellido1" validate:"required,max=60"`
	Apellido2       string `json:"apellido2" validate:"max=60"`
	Correo          string `json:"correo" validate:"omitempty,email,max=120"`
	Telefono        string `json:"telefono" validate:"phone"`
	FotoURL         string `json:"foto_url" validate:"max=255"`
	FirmaURL        string `json:"firma_url" validate:"max=255"`
	WhatsappEnabled *bool  `json:"whatsapp_enabled"`
}

func (in *MemberInput) normalize() {
	in.Documento = strings.TrimSpace(in.Documento)
	in.Nombre1 = strings.TrimSpace(in.Nombre1)
	in.Nombre2 = strings.TrimSpace(in.Nombre2)
	in.Apellido1 = strings.TrimSpace(in.Apellido1)
	in.Apellido2 = strings.TrimSpace(in.Apellido2)
	in.Correo = strings.ToLower(strings.TrimSpace(in.Correo))
	in.Telefono = strings.TrimSpace(in.Telefono)
}

func (in *MemberInput) apply(m *models.Member) {
	m.Documento = in.Documento
	m.Nombre1 = in.Nombre1
	m.Nombre2 = in.Nombre2
	m.Apellido1 = in.Apellido1
	m.Apellido2 = in.Apellido2
	m.Correo = in.Correo
	m.Telefono = in.Telefono
	m.FotoURL = in.FotoURL
	m.FirmaURL = in.FirmaURL
	if in.WhatsappEnabled != nil {
		m.WhatsappEnabled = *in.WhatsappEnabled
	}
}

// Create registers a member and seeds the 52-week schedule in one transaction
func (s *MemberService) Create(ctx context.Context, in MemberInput) (*models.Member, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	taken, err := s.memberRepo.ExistsByDocumento(ctx, in.Documento, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrDocumentTaken
	}

	member := &models.Member{Estado: domain.MemberActive}
	in.apply(member)

	err = repositories.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.memberRepo.WithTx(tx).Create(ctx, member); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDocumentTaken
			}
			return err
		}
		return s.paymentRepo.WithTx(tx).SeedSchedule(ctx, member.ID)
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

// List lists members with their saved totals
func (s *MemberService) List(ctx context.Context, filter repositories.MemberFilter) ([]models.MemberWithTotal, error) {
	if filter.Status != "" && filter.Status != domain.MemberActive && filter.Status != domain.MemberDisabled {
		return nil, domain.ErrInvalidMemberState
	}
	rows, err := s.memberRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.MemberWithTotal{}
	}
	return rows, nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	return findMember(ctx, s.memberRepo, id)
}

func findMember(ctx context.Context, repo repositories.MemberRepository, id uint) (*models.Member, error) {
	member, err := repo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// Update replaces a member's editable fields
func (s *MemberService) Update(ctx context.Context, id uint, in MemberInput) (*models.Member, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.memberRepo.ExistsByDocumento(ctx, in.Documento, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Wrapf(domain.ErrDocumentTaken, "Documento ya registrado por otro socio")
	}

	in.apply(member)
	if err := s.memberRepo.Update(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Wrapf(domain.ErrDocumentTaken, "Documento ya registrado por otro socio")
		}
		return nil, err
	}
	return member, nil
}

// SetStatus toggles ACTIVO / INHABILITADO and stamps the disablement time
func (s *MemberService) SetStatus(ctx context.Context, id uint, estado string) (*models.Member, error) {
	estado = strings.ToUpper(strings.TrimSpace(estado))
	if estado != domain.MemberActive && estado != domain.MemberDisabled {
		return nil, domain.ErrInvalidMemberState
	}

	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	member.Estado = estado
	if estado == domain.MemberDisabled {
		now := time.Now()
		member.InhabilitadoEn = &now
	} else {
		member.InhabilitadoEn = nil
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}
