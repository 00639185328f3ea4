package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/core/ledger"
	"natillera-miahorro/internal/pkg/metrics"
	"natillera-miahorro/internal/pkg/validation"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// History actions
const (
	HistoryUpsert = "UPSERT"
	HistoryUpdate = "UPDATE"
)

// PaymentService handles the weekly contribution schedule
type PaymentService struct {
	db          *gorm.DB
	memberRepo  repositories.MemberRepository
	paymentRepo *repositories.PaymentRepository
	renderer    ReceiptRenderer
	notifier    Notifier
}

// NewPaymentService creates a new weekly payment service
func NewPaymentService(
	db *gorm.DB,
	memberRepo repositories.MemberRepository,
	paymentRepo *repositories.PaymentRepository,
	renderer ReceiptRenderer,
	notifier Notifier,
) *PaymentService {
	return &PaymentService{
		db:          db,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		renderer:    renderer,
		notifier:    notifier,
	}
}

// PaymentFields are the writable columns of a weekly payment
type PaymentFields struct {
	FechaPago     string          `json:"fecha_pago"`
	FormaPago     string          `json:"forma_pago" validate:"max=30"`
	Valor         decimal.Decimal `json:"valor"`
	NombrePagador string          `json:"nombre_pagador" validate:"max=120"`
	FirmaRecibe   string          `json:"firma_recibe" validate:"max=120"`
	Estado        string          `json:"estado"`
	Usuario       string          `json:"usuario" validate:"max=50"`
}

// UpsertPaymentInput addresses a row by (socio, semana)
type UpsertPaymentInput struct {
	SocioID uint `json:"socio_id" validate:"required"`
	Semana  int  `json:"semana" validate:"required"`
	PaymentFields
}

// ListByMember returns the member's 52 rows, creating any that are missing
func (s *PaymentService) ListByMember(ctx context.Context, socioID uint) ([]models.WeeklyPayment, error) {
	if _, err := s.member(ctx, socioID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListBySocio(ctx, socioID)
	if err != nil {
		return nil, err
	}
	if len(payments) >= ledger.WeeksPerYear {
		return payments, nil
	}

	err = repositories.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return s.paymentRepo.WithTx(tx).SeedSchedule(ctx, socioID)
	})
	if err != nil {
		return nil, err
	}
	return s.paymentRepo.ListBySocio(ctx, socioID)
}

// Upsert creates or updates the row for (socio, semana). Every call writes
// exactly one history entry holding the row as it was before the write.
func (s *PaymentService) Upsert(ctx context.Context, in UpsertPaymentInput, actor string) (*models.WeeklyPayment, error) {
	if err := validation.Struct(in); err != nil {
		if in.SocioID == 0 || in.Semana == 0 {
			return nil, domain.Invalidf("Faltan socio_id o semana")
		}
		return nil, err
	}
	if err := ledger.ValidateWeek(in.Semana); err != nil {
		return nil, err
	}

	member, err := s.member(ctx, in.SocioID)
	if err != nil {
		return nil, err
	}

	locate := func(repo *repositories.PaymentRepository) (*models.WeeklyPayment, error) {
		if err := repo.EnsureWeek(ctx, in.SocioID, in.Semana); err != nil {
			return nil, err
		}
		return repo.GetBySocioWeekForUpdate(ctx, in.SocioID, in.Semana)
	}
	return s.write(ctx, member, locate, in.PaymentFields, domain.PaymentPending, HistoryUpsert, actor)
}

// Update rewrites a payment addressed by id; estado is kept when omitted
func (s *PaymentService) Update(ctx context.Context, id uint, fields PaymentFields, actor string) (*models.WeeklyPayment, error) {
	current, err := s.payment(ctx, id)
	if err != nil {
		return nil, err
	}
	member, err := s.member(ctx, current.SocioID)
	if err != nil {
		return nil, err
	}

	locate := func(repo *repositories.PaymentRepository) (*models.WeeklyPayment, error) {
		return repo.GetForUpdate(ctx, id)
	}
	return s.write(ctx, member, locate, fields, "", HistoryUpdate, actor)
}

// write snapshots the located row into the history log and updates it, all in
// one transaction. An empty defaultStatus keeps the row's estado when the
// request omits it.
func (s *PaymentService) write(
	ctx context.Context,
	member *models.Member,
	locate func(repo *repositories.PaymentRepository) (*models.WeeklyPayment, error),
	fields PaymentFields,
	defaultStatus string,
	action string,
	actor string,
) (*models.WeeklyPayment, error) {
	if err := validation.Struct(fields); err != nil {
		return nil, err
	}
	fechaPago, err := parseDate("fecha_pago", fields.FechaPago)
	if err != nil {
		return nil, err
	}
	if fields.Valor.IsNegative() {
		return nil, domain.Invalidf("El valor no puede ser negativo")
	}
	estado := strings.ToUpper(strings.TrimSpace(fields.Estado))
	if estado != "" && !domain.IsValidPaymentStatus(estado) {
		return nil, domain.ErrInvalidPaymentStatus
	}

	var before, after models.WeeklyPayment
	err = repositories.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.paymentRepo.WithTx(tx)

		row, err := locate(repo)
		if err != nil {
			if repositories.IsNotFound(err) {
				return domain.ErrPaymentNotFound
			}
			return err
		}
		before = *row
		after = *row

		after.FechaPago = fechaPago
		after.FormaPago = strings.TrimSpace(fields.FormaPago)
		after.Valor = ledger.Round(fields.Valor)
		after.NombrePagador = strings.TrimSpace(fields.NombrePagador)
		after.FirmaRecibe = strings.TrimSpace(fields.FirmaRecibe)
		after.Estado = firstNonEmpty(estado, defaultStatus, before.Estado)

		snapshot, err := json.Marshal(map[string]interface{}{
			"accion":  action,
			"antes":   before,
			"despues": after,
		})
		if err != nil {
			return fmt.Errorf("marshal payment snapshot: %w", err)
		}

		if err := repo.AppendHistory(ctx, &models.PaymentHistory{
			PagoID:  before.ID,
			SocioID: before.SocioID,
			Semana:  before.Semana,
			Accion:  action,
			Cambios: datatypes.JSON(snapshot),
			Usuario: firstNonEmpty(actor, domain.SystemActor),
		}); err != nil {
			return err
		}

		return repo.Update(ctx, &after)
	})
	if err != nil {
		return nil, err
	}

	metrics.WeeklyPaymentsTotal.WithLabelValues(after.Estado).Inc()

	if before.Estado != domain.PaymentPaid && after.Estado == domain.PaymentPaid && after.Valor.IsPositive() {
		s.notifier.WeeklyPaymentRecorded(*member, after)
	}

	return &after, nil
}

// History lists the audit trail of a payment
func (s *PaymentService) History(ctx context.Context, id uint) ([]models.PaymentHistory, error) {
	if _, err := s.payment(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.paymentRepo.ListHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.PaymentHistory{}
	}
	return entries, nil
}

// Receipt renders the weekly receipt PDF and its download filename
func (s *PaymentService) Receipt(ctx context.Context, id uint) ([]byte, string, error) {
	payment, err := s.payment(ctx, id)
	if err != nil {
		return nil, "", err
	}
	member, err := s.member(ctx, payment.SocioID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.renderer.WeeklyReceipt(member, payment)
	if err != nil {
		return nil, "", fmt.Errorf("render weekly receipt: %w", err)
	}
	return pdf, WeeklyReceiptFilename(member, payment), nil
}

func (s *PaymentService) member(ctx context.Context, id uint) (*models.Member, error) {
	return findMember(ctx, s.memberRepo, id)
}

func (s *PaymentService) payment(ctx context.Context, id uint) (*models.WeeklyPayment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}
