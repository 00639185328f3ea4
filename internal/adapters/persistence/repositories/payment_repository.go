package repositories

import (
	"context"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/core/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository handles weekly payment data access
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new weekly payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// onMemberWeek ignores inserts that hit the (socio_id, semana) key
var onMemberWeek = clause.OnConflict{
	Columns:   []clause.Column{{Name: "socio_id"}, {Name: "semana"}},
	DoNothing: true,
}

// SeedSchedule inserts the PENDIENTE rows for weeks 1..52 that are missing.
// Existing rows are left untouched.
func (r *PaymentRepository) SeedSchedule(ctx context.Context, socioID uint) error {
	weeks := ledger.ScheduleWeeks()
	rows := make([]models.WeeklyPayment, 0, len(weeks))
	for _, w := range weeks {
		rows = append(rows, models.WeeklyPayment{
			SocioID: socioID,
			Semana:  w,
			Valor:   decimal.Zero,
			Estado:  domain.PaymentPending,
		})
	}
	return r.db.WithContext(ctx).Clauses(onMemberWeek).Create(&rows).Error
}

// EnsureWeek inserts a PENDIENTE row for (socio, week) if absent
func (r *PaymentRepository) EnsureWeek(ctx context.Context, socioID uint, week int) error {
	row := models.WeeklyPayment{
		SocioID: socioID,
		Semana:  week,
		Valor:   decimal.Zero,
		Estado:  domain.PaymentPending,
	}
	return r.db.WithContext(ctx).Clauses(onMemberWeek).Create(&row).Error
}

// ListBySocio lists a member's schedule ordered by week
func (r *PaymentRepository) ListBySocio(ctx context.Context, socioID uint) ([]models.WeeklyPayment, error) {
	var payments []models.WeeklyPayment
	err := r.db.WithContext(ctx).
		Where("socio_id = ?", socioID).
		Order("semana").
		Find(&payments).Error
	return payments, err
}

// GetByID gets a weekly payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.WeeklyPayment, error) {
	var payment models.WeeklyPayment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetBySocioWeek gets the row for (socio, week)
func (r *PaymentRepository) GetBySocioWeek(ctx context.Context, socioID uint, week int) (*models.WeeklyPayment, error) {
	var payment models.WeeklyPayment
	err := r.db.WithContext(ctx).
		Where("socio_id = ? AND semana = ?", socioID, week).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetForUpdate gets a weekly payment by ID and locks its row until the
// transaction ends
func (r *PaymentRepository) GetForUpdate(ctx context.Context, id uint) (*models.WeeklyPayment, error) {
	var payment models.WeeklyPayment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetBySocioWeekForUpdate gets and locks the row for (socio, week)
func (r *PaymentRepository) GetBySocioWeekForUpdate(ctx context.Context, socioID uint, week int) (*models.WeeklyPayment, error) {
	var payment models.WeeklyPayment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("socio_id = ? AND semana = ?", socioID, week).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Update saves every column of payment
func (r *PaymentRepository) Update(ctx context.Context, payment *models.WeeklyPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// AppendHistory writes an audit entry
func (r *PaymentRepository) AppendHistory(ctx context.Context, entry *models.PaymentHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListHistory lists the audit trail of a payment, oldest first
func (r *PaymentRepository) ListHistory(ctx context.Context, pagoID uint) ([]models.PaymentHistory, error) {
	var entries []models.PaymentHistory
	err := r.db.WithContext(ctx).
		Where("pago_id = ?", pagoID).
		Order("id").
		Find(&entries).Error
	return entries, err
}

// SumPaid totals every PAGADO contribution
func (r *PaymentRepository) SumPaid(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.WeeklyPayment{}).
		Select("COALESCE(SUM(valor), 0)").
		Where("estado = ?", domain.PaymentPaid).
		Row().
		Scan(&total)
	return total, err
}
