package services

import (
	"context"
	"math/rand/v2"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/core/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService handles dashboard operations
type DashboardService struct {
	db          *gorm.DB
	memberRepo  repositories.MemberRepository
	paymentRepo *repositories.PaymentRepository
	loanRepo    *repositories.LoanRepository
	eventRepo   *repositories.EventRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	db *gorm.DB,
	memberRepo repositories.MemberRepository,
	paymentRepo *repositories.PaymentRepository,
	loanRepo *repositories.LoanRepository,
	eventRepo *repositories.EventRepository,
) *DashboardService {
	return &DashboardService{
		db:          db,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		loanRepo:    loanRepo,
		eventRepo:   eventRepo,
	}
}

// DashboardStats are the headline counters
type DashboardStats struct {
	TotalSocios         int64           `json:"total_socios"`
	EventosProximos     int64           `json:"eventos_proximos"`
	PrestamosPendientes int64           `json:"prestamos_pendientes"`
	TotalAhorrado       decimal.Decimal `json:"total_ahorrado"`
}

// DashboardSummary represents the dashboard payload
type DashboardSummary struct {
	Stats     DashboardStats           `json:"stats"`
	Socios    []models.MemberWithTotal `json:"socios"`
	Eventos   []models.Event           `json:"eventos"`
	Prestamos []models.LoanSummary     `json:"prestamos"`
}

// Sample sizes
const (
	dashboardMinMembers = 5
	dashboardMaxMembers = 10
	dashboardEvents     = 5
	dashboardLoans      = 10
)

// GetSummary returns counters plus a random sample of members and pending
// loans and the latest events.
func (s *DashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	data := &DashboardSummary{}

	// Stats
	var err error
	if data.Stats.TotalSocios, err = s.memberRepo.CountByStatus(ctx, domain.MemberActive); err != nil {
		return nil, err
	}
	if data.Stats.EventosProximos, err = s.eventRepo.CountByStatus(ctx, domain.EventUpcoming); err != nil {
		return nil, err
	}
	if data.Stats.PrestamosPendientes, err = s.loanRepo.CountByStatus(ctx, domain.LoanPending); err != nil {
		return nil, err
	}
	if data.Stats.TotalAhorrado, err = s.paymentRepo.SumPaid(ctx); err != nil {
		return nil, err
	}

	// Random active members with their savings
	memberCount := dashboardMinMembers + rand.IntN(dashboardMaxMembers-dashboardMinMembers+1)
	err = s.db.WithContext(ctx).
		Table("socios AS s").
		Select("s.*, COALESCE(SUM(p.valor), 0) AS total_ahorrado").
		Joins("LEFT JOIN pagos p ON p.socio_id = s.id AND p.estado = ?", domain.PaymentPaid).
		Where("s.estado = ?", domain.MemberActive).
		Group("s.id").
		Order(s.random()).
		Limit(memberCount).
		Scan(&data.Socios).Error
	if err != nil {
		return nil, err
	}

	// Latest events
	if data.Eventos, err = s.eventRepo.Latest(ctx, dashboardEvents); err != nil {
		return nil, err
	}

	// Random pending loans
	err = s.db.WithContext(ctx).
		Table("prestamos AS p").
		Select("p.*, s.nombre1, s.apellido1, s.documento, COALESCE(SUM(pp.monto_pago), 0) AS total_pagado").
		Joins("LEFT JOIN socios s ON s.id = p.socio_id").
		Joins("LEFT JOIN prestamos_pagos pp ON pp.prestamo_id = p.id").
		Where("p.estado = ?", domain.LoanPending).
		Group("p.id, s.nombre1, s.apellido1, s.documento").
		Order(s.random()).
		Limit(dashboardLoans).
		Scan(&data.Prestamos).Error
	if err != nil {
		return nil, err
	}
	for i := range data.Prestamos {
		data.Prestamos[i].SaldoPendiente = balanceOf(&data.Prestamos[i].Loan, data.Prestamos[i].TotalPagado).DisplayOutstanding()
	}

	if data.Socios == nil {
		data.Socios = []models.MemberWithTotal{}
	}
	if data.Eventos == nil {
		data.Eventos = []models.Event{}
	}
	if data.Prestamos == nil {
		data.Prestamos = []models.LoanSummary{}
	}
	data.Stats.TotalAhorrado = ledger.Round(data.Stats.TotalAhorrado)
	return data, nil
}

func (s *DashboardService) random() string {
	if s.db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}
