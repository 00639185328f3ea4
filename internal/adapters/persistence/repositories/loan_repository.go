package repositories

import (
	"context"
	"time"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoanFilter narrows the loan list
type LoanFilter struct {
	Status  string
	SocioID uint
}

// LoanRepository handles loan and installment data access
type LoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *LoanRepository) WithTx(tx *gorm.DB) *LoanRepository {
	return &LoanRepository{db: tx}
}

// Create creates a new loan
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	if err := r.db.WithContext(ctx).First(&loan, id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetForUpdate gets a loan and locks its row until the transaction ends
func (r *LoanRepository) GetForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update saves every column of loan
func (r *LoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Omit("Socio", "Installments").Save(loan).Error
}

// UpdateStatus sets estado on a loan
func (r *LoanRepository) UpdateStatus(ctx context.Context, id uint, estado string) error {
	return r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", id).
		Update("estado", estado).Error
}

// SetCode stores the human-readable code
func (r *LoanRepository) SetCode(ctx context.Context, id uint, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", id).
		Update("codigo", code).Error
}

// Delete removes a loan and its installments. Callers run it inside a
// transaction so both statements commit together.
func (r *LoanRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("prestamo_id = ?", id).Delete(&models.LoanInstallment{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Loan{}, id).Error
}

func (r *LoanRepository) summaryQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("prestamos AS p").
		Select("p.*, s.nombre1, s.apellido1, s.documento, COALESCE(SUM(pp.monto_pago), 0) AS total_pagado").
		Joins("LEFT JOIN socios s ON s.id = p.socio_id").
		Joins("LEFT JOIN prestamos_pagos pp ON pp.prestamo_id = p.id").
		Group("p.id, s.nombre1, s.apellido1, s.documento")
}

// List lists loans with member names and paid totals, newest first
func (r *LoanRepository) List(ctx context.Context, filter LoanFilter) ([]models.LoanSummary, error) {
	var rows []models.LoanSummary
	q := r.summaryQuery(ctx)
	if filter.Status != "" {
		q = q.Where("p.estado = ?", filter.Status)
	}
	if filter.SocioID != 0 {
		q = q.Where("p.socio_id = ?", filter.SocioID)
	}
	err := q.Order("p.id DESC").Scan(&rows).Error
	return rows, err
}

// GetSummary gets one loan with member names and paid total
func (r *LoanRepository) GetSummary(ctx context.Context, id uint) (*models.LoanSummary, error) {
	var rows []models.LoanSummary
	if err := r.summaryQuery(ctx).Where("p.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// TotalPaid sums the installments of a loan
func (r *LoanRepository) TotalPaid(ctx context.Context, loanID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.LoanInstallment{}).
		Select("COALESCE(SUM(monto_pago), 0)").
		Where("prestamo_id = ?", loanID).
		Row().
		Scan(&total)
	return total, err
}

// TotalPaidThrough sums the installments recorded up to and including installmentID
func (r *LoanRepository) TotalPaidThrough(ctx context.Context, loanID, installmentID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.LoanInstallment{}).
		Select("COALESCE(SUM(monto_pago), 0)").
		Where("prestamo_id = ? AND id <= ?", loanID, installmentID).
		Row().
		Scan(&total)
	return total, err
}

// CreateInstallment appends an installment
func (r *LoanRepository) CreateInstallment(ctx context.Context, installment *models.LoanInstallment) error {
	return r.db.WithContext(ctx).Create(installment).Error
}

// GetInstallment gets an installment by ID
func (r *LoanRepository) GetInstallment(ctx context.Context, id uint) (*models.LoanInstallment, error) {
	var installment models.LoanInstallment
	if err := r.db.WithContext(ctx).First(&installment, id).Error; err != nil {
		return nil, err
	}
	return &installment, nil
}

// ListInstallments lists a loan's installments, newest first
func (r *LoanRepository) ListInstallments(ctx context.Context, loanID uint) ([]models.LoanInstallment, error) {
	var installments []models.LoanInstallment
	err := r.db.WithContext(ctx).
		Where("prestamo_id = ?", loanID).
		Order("fecha_pago DESC, id DESC").
		Find(&installments).Error
	return installments, err
}

// CountInstallments counts a loan's installments
func (r *LoanRepository) CountInstallments(ctx context.Context, loanID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoanInstallment{}).Where("prestamo_id = ?", loanID).Count(&count).Error
	return count, err
}

// ListOverdueCandidates lists open loans whose due date is before asOf
func (r *LoanRepository) ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("estado IN ? AND fecha_vencimiento < ?", []string{domain.LoanPending, domain.LoanApproved}, asOf).
		Order("id").
		Find(&loans).Error
	return loans, err
}

// CountByStatus counts loans in estado
func (r *LoanRepository) CountByStatus(ctx context.Context, estado string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).Where("estado = ?", estado).Count(&count).Error
	return count, err
}
