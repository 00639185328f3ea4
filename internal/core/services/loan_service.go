package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/core/ledger"
	"natillera-miahorro/internal/pkg/logger"
	"natillera-miahorro/internal/pkg/metrics"
	"natillera-miahorro/internal/pkg/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoanService handles loans and their installments
type LoanService struct {
	db         *gorm.DB
	memberRepo repositories.MemberRepository
	loanRepo   *repositories.LoanRepository
	renderer   ReceiptRenderer
	notifier   Notifier
	now        func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(
	db *gorm.DB,
	memberRepo repositories.MemberRepository,
	loanRepo *repositories.LoanRepository,
	renderer ReceiptRenderer,
	notifier Notifier,
) *LoanService {
	return &LoanService{
		db:         db,
		memberRepo: memberRepo,
		loanRepo:   loanRepo,
		renderer:   renderer,
		notifier:   notifier,
		now:        time.Now,
	}
}

// CreateLoanInput is the disbursement request
type CreateLoanInput struct {
	SocioID          uint            `json:"socio_id" validate:"required"`
	Monto            decimal.Decimal `json:"monto"`
	TasaInteres      decimal.Decimal `json:"tasa_interes"`
	PlazoMeses       int             `json:"plazo_meses" validate:"gte=0,lte=120"`
	FechaVencimiento string          `json:"fecha_vencimiento"`
	Observaciones    string          `json:"observaciones" validate:"max=1000"`
}

// UpdateLoanInput carries only the fields being changed
type UpdateLoanInput struct {
	Monto            *decimal.Decimal `json:"monto"`
	TasaInteres      *decimal.Decimal `json:"tasa_interes"`
	PlazoMeses       *int             `json:"plazo_meses"`
	FechaVencimiento *string          `json:"fecha_vencimiento"`
	Estado           *string          `json:"estado"`
	Observaciones    *string          `json:"observaciones"`
}

// InstallmentInput is a loan payment
type InstallmentInput struct {
	MontoPago     decimal.Decimal `json:"monto_pago"`
	FechaPago     string          `json:"fecha_pago"`
	FormaPago     string          `json:"forma_pago" validate:"max=30"`
	Observaciones string          `json:"observaciones" validate:"max=1000"`
}

// InstallmentResult is what a recorded installment leaves behind
type InstallmentResult struct {
	Installment    *models.LoanInstallment `json:"abono"`
	Estado         string                  `json:"estado"`
	TotalPagado    decimal.Decimal         `json:"total_pagado"`
	SaldoPendiente decimal.Decimal         `json:"saldo_pendiente"`
	Pagado         bool                    `json:"pagado"`
}

// Create disburses a loan. The code is derived from the new id inside the
// same transaction.
func (s *LoanService) Create(ctx context.Context, in CreateLoanInput) (*models.Loan, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	member, err := s.member(ctx, in.SocioID)
	if err != nil {
		return nil, err
	}

	total, err := ledger.TotalAmount(in.Monto, in.TasaInteres)
	if err != nil {
		return nil, err
	}

	plazo := in.PlazoMeses
	if plazo == 0 {
		plazo = ledger.DefaultTermMonths
	}
	approved := domain.StartOfDay(s.now())
	due := ledger.DueDate(approved, plazo)
	if custom, err := parseDate("fecha_vencimiento", in.FechaVencimiento); err != nil {
		return nil, err
	} else if custom != nil {
		due = *custom
	}

	loan := &models.Loan{
		SocioID:          member.ID,
		Monto:            ledger.Round(in.Monto),
		TasaInteres:      in.TasaInteres.Round(ledger.MoneyScale),
		PlazoMeses:       plazo,
		FechaAprobacion:  approved,
		FechaVencimiento: due,
		MontoTotal:       total,
		Estado:           domain.LoanPending,
		Observaciones:    strings.TrimSpace(in.Observaciones),
	}

	err = repositories.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.loanRepo.WithTx(tx)
		if err := repo.Create(ctx, loan); err != nil {
			return err
		}
		loan.Codigo = ledger.LoanCode(loan.ID)
		return repo.SetCode(ctx, loan.ID, loan.Codigo)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Loan created",
		zap.Uint("loan_id", loan.ID),
		zap.String("codigo", loan.Codigo),
		zap.Uint("socio_id", member.ID),
		zap.String("monto_total", loan.MontoTotal.StringFixed(2)))

	s.notifier.LoanCreated(*member, *loan)
	return loan, nil
}

// List lists loans with their paid totals and outstanding balance
func (s *LoanService) List(ctx context.Context, filter repositories.LoanFilter) ([]models.LoanSummary, error) {
	if filter.Status != "" && !domain.IsValidLoanStatus(filter.Status) {
		return nil, domain.ErrInvalidLoanStatus
	}
	rows, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.LoanSummary{}
	}
	for i := range rows {
		rows[i].SaldoPendiente = balanceOf(&rows[i].Loan, rows[i].TotalPagado).DisplayOutstanding()
	}
	return rows, nil
}

// GetByID gets one loan with its aggregates
func (s *LoanService) GetByID(ctx context.Context, id uint) (*models.LoanSummary, error) {
	row, err := s.loanRepo.GetSummary(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	row.SaldoPendiente = balanceOf(&row.Loan, row.TotalPagado).DisplayOutstanding()
	return row, nil
}

// Update edits a loan. monto_total follows principal and rate; PAGADO is
// only reachable through a settled balance and is never left.
func (s *LoanService) Update(ctx context.Context, id uint, in UpdateLoanInput) (*models.LoanSummary, error) {
	err := repositories.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.loanRepo.WithTx(tx)

		loan, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		if in.Monto != nil {
			loan.Monto = ledger.Round(*in.Monto)
		}
		if in.TasaInteres != nil {
			loan.TasaInteres = in.TasaInteres.Round(ledger.MoneyScale)
		}
		if in.Monto != nil || in.TasaInteres != nil {
			total, err := ledger.TotalAmount(loan.Monto, loan.TasaInteres)
			if err != nil {
				return err
			}
			loan.MontoTotal = total
		}
		if in.PlazoMeses != nil {
			if *in.PlazoMeses <= 0 {
				return domain.Invalidf("El plazo debe ser mayor a cero")
			}
			loan.PlazoMeses = *in.PlazoMeses
		}
		if in.FechaVencimiento != nil {
			due, err := parseDate("fecha_vencimiento", *in.FechaVencimiento)
			if err != nil {
				return err
			}
			if due != nil {
				loan.FechaVencimiento = *due
			}
		}
		if in.Observaciones != nil {
			loan.Observaciones = strings.TrimSpace(*in.Observaciones)
		}

		paid, err := repo.TotalPaid(ctx, loan.ID)
		if err != nil {
			return err
		}
		balance := balanceOf(loan, paid)
		if balance.Outstanding().LessThan(ledger.Tolerance.Neg()) {
			return domain.Wrapf(domain.ErrTotalBelowPaid,
				"El nuevo total (%s) es menor a lo ya abonado (%s)", ledger.FormatCOP(balance.Total), ledger.FormatCOP(paid))
		}

		if in.Estado != nil {
			estado := strings.ToUpper(strings.TrimSpace(*in.Estado))
			if !domain.IsValidLoanStatus(estado) {
				return domain.ErrInvalidLoanStatus
			}
			if loan.Estado == domain.LoanPaid && estado != domain.LoanPaid {
				return domain.ErrLoanStatusLocked
			}
			if estado == domain.LoanPaid && !balance.IsSettled() {
				return domain.Wrapf(domain.ErrInvalidLoanStatus,
					"El préstamo aún tiene saldo pendiente (%s)", ledger.FormatCOP(balance.Outstanding()))
			}
			loan.Estado = estado
		}

		if loan.Estado != domain.LoanCancelled {
			loan.Estado, _ = ledger.EvaluatePayoff(loan.Estado, balance)
		}

		return repo.Update(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a loan and its installments together
func (s *LoanService) Delete(ctx context.Context, id uint) error {
	return repositories.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.loanRepo.WithTx(tx)
		if _, err := repo.GetByID(ctx, id); err != nil {
			if repositories.IsNotFound(err) {
				return domain.ErrLoanNotFound
			}
			return err
		}
		return repo.Delete(ctx, id)
	})
}

// RegisterInstallment validates the amount against the balance, stores the
// installment and moves the loan to PAGADO when it becomes settled. Nothing
// is written when validation fails.
func (s *LoanService) RegisterInstallment(ctx context.Context, loanID uint, in InstallmentInput) (*InstallmentResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	fecha, err := parseDate("fecha_pago", in.FechaPago)
	if err != nil {
		return nil, err
	}
	if fecha == nil {
		today := domain.StartOfDay(s.now())
		fecha = &today
	}

	var (
		loan        *models.Loan
		installment *models.LoanInstallment
		after       ledger.Balance
		paidOff     bool
	)
	err = repositories.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.loanRepo.WithTx(tx)

		var err error
		loan, err = repo.GetForUpdate(ctx, loanID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		paid, err := repo.TotalPaid(ctx, loan.ID)
		if err != nil {
			return err
		}
		amount := ledger.Round(in.MontoPago)
		before := balanceOf(loan, paid)
		if err := ledger.ValidateInstallment(loan.Estado, before, amount); err != nil {
			metrics.InstallmentsTotal.WithLabelValues("rejected").Inc()
			return err
		}

		installment = &models.LoanInstallment{
			PrestamoID:    loan.ID,
			FechaPago:     *fecha,
			MontoPago:     amount,
			FormaPago:     strings.TrimSpace(in.FormaPago),
			Observaciones: strings.TrimSpace(in.Observaciones),
		}
		if err := repo.CreateInstallment(ctx, installment); err != nil {
			return err
		}

		after = before.After(amount)
		var estado string
		estado, paidOff = ledger.EvaluatePayoff(loan.Estado, after)
		if paidOff {
			if err := repo.UpdateStatus(ctx, loan.ID, estado); err != nil {
				return err
			}
			loan.Estado = estado
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InstallmentsTotal.WithLabelValues("accepted").Inc()
	if paidOff {
		metrics.InstallmentsTotal.WithLabelValues("payoff").Inc()
		logger.Log.Info("Loan paid off",
			zap.Uint("loan_id", loan.ID),
			zap.String("codigo", loan.Codigo))
	}

	if member, err := s.member(ctx, loan.SocioID); err != nil {
		logger.Log.Warn("Installment notification skipped",
			zap.Uint("loan_id", loan.ID),
			zap.Error(err))
	} else {
		s.notifier.InstallmentRecorded(*member, *loan, *installment, after, paidOff)
	}

	return &InstallmentResult{
		Installment:    installment,
		Estado:         loan.Estado,
		TotalPagado:    after.Paid,
		SaldoPendiente: after.DisplayOutstanding(),
		Pagado:         paidOff,
	}, nil
}

// ListInstallments lists a loan's installments, newest first
func (s *LoanService) ListInstallments(ctx context.Context, loanID uint) ([]models.LoanInstallment, error) {
	if _, err := s.loan(ctx, loanID); err != nil {
		return nil, err
	}
	installments, err := s.loanRepo.ListInstallments(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if installments == nil {
		installments = []models.LoanInstallment{}
	}
	return installments, nil
}

// InstallmentReceipt renders the receipt of one installment with the balance
// as it stood right after it was recorded.
func (s *LoanService) InstallmentReceipt(ctx context.Context, installmentID uint) ([]byte, string, error) {
	installment, err := s.loanRepo.GetInstallment(ctx, installmentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, "", domain.ErrInstallmentNotFound
		}
		return nil, "", err
	}
	loan, err := s.loan(ctx, installment.PrestamoID)
	if err != nil {
		return nil, "", err
	}
	member, err := s.member(ctx, loan.SocioID)
	if err != nil {
		return nil, "", err
	}
	paid, err := s.loanRepo.TotalPaidThrough(ctx, loan.ID, installment.ID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.renderer.InstallmentReceipt(member, loan, installment, balanceOf(loan, paid))
	if err != nil {
		return nil, "", fmt.Errorf("render installment receipt: %w", err)
	}
	return pdf, InstallmentReceiptFilename(loan, installment), nil
}

// Certificate renders the paz y salvo of a settled loan
func (s *LoanService) Certificate(ctx context.Context, loanID uint) ([]byte, string, error) {
	loan, err := s.loan(ctx, loanID)
	if err != nil {
		return nil, "", err
	}
	if loan.Estado != domain.LoanPaid {
		return nil, "", domain.Invalidf("El préstamo %s aún no está pagado", loan.Codigo)
	}
	member, err := s.member(ctx, loan.SocioID)
	if err != nil {
		return nil, "", err
	}
	paid, err := s.loanRepo.TotalPaid(ctx, loan.ID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.renderer.Certificate(member, loan, paid)
	if err != nil {
		return nil, "", fmt.Errorf("render certificate: %w", err)
	}
	return pdf, CertificateFilename(member, loan), nil
}

// MarkOverdue moves open loans past their due date with a balance left to
// VENCIDO and returns how many changed.
func (s *LoanService) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	candidates, err := s.loanRepo.ListOverdueCandidates(ctx, asOf)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range candidates {
		loan := &candidates[i]
		paid, err := s.loanRepo.TotalPaid(ctx, loan.ID)
		if err != nil {
			return marked, err
		}
		if balanceOf(loan, paid).IsSettled() {
			continue
		}
		if err := s.loanRepo.UpdateStatus(ctx, loan.ID, domain.LoanOverdue); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

func (s *LoanService) loan(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) member(ctx context.Context, id uint) (*models.Member, error) {
	return findMember(ctx, s.memberRepo, id)
}

func balanceOf(loan *models.Loan, paid decimal.Decimal) ledger.Balance {
	return ledger.Balance{Total: loan.MontoTotal, Paid: paid}
}
