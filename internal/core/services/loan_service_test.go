package services

import (
	"context"
	"testing"
	"time"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type loanFixture struct {
	db       *gorm.DB
	svc      *LoanService
	notifier *testutil.RecordingNotifier
	renderer *testutil.StubRenderer
	member   *models.Member
}

func newLoanFixture(t *testing.T) *loanFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	f := &loanFixture{
		db:       db,
		notifier: &testutil.RecordingNotifier{},
		renderer: &testutil.StubRenderer{},
		member:   createMember(t, db, "111", "Ana", "3001234567"),
	}
	f.svc = NewLoanService(db, repositories.NewMemberRepository(db), repositories.NewLoanRepository(db), f.renderer, f.notifier)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 30, 0, 0, time.Local) }
	return f
}

func (f *loanFixture) create(t *testing.T, monto, tasa int64) *models.Loan {
	t.Helper()

	loan, err := f.svc.Create(context.Background(), CreateLoanInput{
		SocioID:     f.member.ID,
		Monto:       money(monto),
		TasaInteres: money(tasa),
	})
	require.NoError(t, err)
	return loan
}

func (f *loanFixture) pay(t *testing.T, loanID uint, amount int64) *InstallmentResult {
	t.Helper()

	result, err := f.svc.RegisterInstallment(context.Background(), loanID, InstallmentInput{MontoPago: money(amount)})
	require.NoError(t, err)
	return result
}

func TestLoanService_CreateComputesTotalAndCode(t *testing.T) {
	f := newLoanFixture(t)

	loan := f.create(t, 100000, 10)

	assert.True(t, loan.MontoTotal.Equal(money(110000)), "got %s", loan.MontoTotal)
	assert.Equal(t, "PRE-0001", loan.Codigo)
	assert.Equal(t, domain.LoanPending, loan.Estado)
	assert.Equal(t, 12, loan.PlazoMeses)
	assert.True(t, loan.FechaAprobacion.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)))
	assert.True(t, loan.FechaVencimiento.Equal(time.Date(2027, 3, 15, 0, 0, 0, 0, time.Local)))

	stored, err := f.svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "PRE-0001", stored.Codigo)
	assert.Equal(t, "Ana", stored.Nombre1)
	assert.True(t, stored.SaldoPendiente.Equal(money(110000)))

	require.Len(t, f.notifier.Loans, 1)
	assert.Equal(t, loan.ID, f.notifier.Loans[0].ID)
}

func TestLoanService_CreateValidation(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateLoanInput{SocioID: f.member.ID, Monto: money(0)})
	assert.ErrorIs(t, err, domain.ErrNonPositiveAmount)

	_, err = f.svc.Create(ctx, CreateLoanInput{SocioID: f.member.ID, Monto: money(1000), TasaInteres: money(-1)})
	assert.ErrorIs(t, err, domain.ErrNegativeRate)

	_, err = f.svc.Create(ctx, CreateLoanInput{SocioID: 999, Monto: money(1000)})
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, "prestamos"))
	assert.Empty(t, f.notifier.Loans)
}

func TestLoanService_InstallmentsPayOffLoan(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.create(t, 100000, 10)

	first := f.pay(t, loan.ID, 40000)
	assert.False(t, first.Pagado)
	assert.True(t, first.SaldoPendiente.Equal(money(70000)))

	second := f.pay(t, loan.ID, 40000)
	assert.False(t, second.Pagado)
	assert.Equal(t, domain.LoanPending, second.Estado)

	last := f.pay(t, loan.ID, 30000)
	assert.True(t, last.Pagado)
	assert.Equal(t, domain.LoanPaid, last.Estado)
	assert.True(t, last.TotalPagado.Equal(money(110000)))
	assert.True(t, last.SaldoPendiente.IsZero())

	stored, err := f.svc.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanPaid, stored.Estado)

	require.Len(t, f.notifier.Installments, 3)
	assert.False(t, f.notifier.Installments[1].PaidOff)
	assert.True(t, f.notifier.Installments[2].PaidOff)

	pdf, filename, err := f.svc.Certificate(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.StubPDF, pdf)
	assert.Equal(t, "paz_y_salvo_PRE-0001_111.pdf", filename)

	_, err = f.svc.RegisterInstallment(context.Background(), loan.ID, InstallmentInput{MontoPago: money(1)})
	assert.ErrorIs(t, err, domain.ErrLoanAlreadyPaid)
}

func TestLoanService_InstallmentAboveBalanceWritesNothing(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.create(t, 100000, 10)
	f.pay(t, loan.ID, 100000)

	_, err := f.svc.RegisterInstallment(context.Background(), loan.ID, InstallmentInput{MontoPago: money(10002)})

	assert.ErrorIs(t, err, domain.ErrInstallmentExceedsBalance)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, "prestamos_pagos"))
	assert.Len(t, f.notifier.Installments, 1)
}

func TestLoanService_InstallmentWithinToleranceSettles(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.create(t, 100000, 10)
	f.pay(t, loan.ID, 100000)

	result := f.pay(t, loan.ID, 10001)

	assert.True(t, result.Pagado)
	assert.True(t, result.SaldoPendiente.IsZero())
}

func TestLoanService_InstallmentRejectsNonPositive(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.create(t, 1000, 0)

	_, err := f.svc.RegisterInstallment(context.Background(), loan.ID, InstallmentInput{MontoPago: money(0)})
	assert.ErrorIs(t, err, domain.ErrNonPositiveAmount)

	_, err = f.svc.RegisterInstallment(context.Background(), 999, InstallmentInput{MontoPago: money(10)})
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLoanService_InstallmentReceiptUsesBalanceAtThatPoint(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.create(t, 100000, 10)
	first := f.pay(t, loan.ID, 40000)
	f.pay(t, loan.ID, 40000)

	_, filename, err := f.svc.InstallmentReceipt(context.Background(), first.Installment.ID)
	require.NoError(t, err)
	assert.Equal(t, "recibo_prestamo_1_abono_1.pdf", filename)
	assert.True(t, f.renderer.LastBalance.Paid.Equal(money(40000)))

	_, _, err = f.svc.InstallmentReceipt(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrInstallmentNotFound)
}

func TestLoanService_CertificateRequiresPaidLoan(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.create(t, 1000, 0)

	_, _, err := f.svc.Certificate(context.Background(), loan.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.renderer.Certificates)
}

func TestLoanService_UpdateRules(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()
	loan := f.create(t, 100000, 10)

	newRate := money(20)
	updated, err := f.svc.Update(ctx, loan.ID, UpdateLoanInput{TasaInteres: &newRate})
	require.NoError(t, err)
	assert.True(t, updated.MontoTotal.Equal(money(120000)))

	paid := domain.LoanPaid
	_, err = f.svc.Update(ctx, loan.ID, UpdateLoanInput{Estado: &paid})
	assert.ErrorIs(t, err, domain.ErrInvalidLoanStatus)

	f.pay(t, loan.ID, 120000)

	pending := domain.LoanPending
	_, err = f.svc.Update(ctx, loan.ID, UpdateLoanInput{Estado: &pending})
	assert.ErrorIs(t, err, domain.ErrLoanStatusLocked)

	bogus := "PERDIDO"
	_, err = f.svc.Update(ctx, loan.ID, UpdateLoanInput{Estado: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidLoanStatus)
}

func TestLoanService_UpdateLoweringPrincipalSettlesLoan(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()
	loan := f.create(t, 100000, 0)
	f.pay(t, loan.ID, 50000)

	lower := money(50000)
	updated, err := f.svc.Update(ctx, loan.ID, UpdateLoanInput{Monto: &lower})

	require.NoError(t, err)
	assert.Equal(t, domain.LoanPaid, updated.Estado)
}

func TestLoanService_UpdateRejectsTotalBelowPaid(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()
	loan := f.create(t, 100000, 0)
	f.pay(t, loan.ID, 90000)

	lower := money(10000)
	_, err := f.svc.Update(ctx, loan.ID, UpdateLoanInput{Monto: &lower})
	assert.ErrorIs(t, err, domain.ErrTotalBelowPaid)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Within tolerance of what was paid is still accepted
	edge := money(89999)
	updated, err := f.svc.Update(ctx, loan.ID, UpdateLoanInput{Monto: &edge})
	require.NoError(t, err)
	assert.Equal(t, domain.LoanPaid, updated.Estado)

	stored, err := f.svc.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.MontoTotal.Equal(money(89999)))
	assert.True(t, stored.TotalPagado.LessThanOrEqual(stored.MontoTotal.Add(money(1))))
}

func TestLoanService_DeleteCascadesInstallments(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.create(t, 1000, 0)
	f.pay(t, loan.ID, 500)

	require.NoError(t, f.svc.Delete(context.Background(), loan.ID))

	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, "prestamos"))
	assert.Equal(t, int64(0), testutil.CountRows(t, f.db, "prestamos_pagos"))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), loan.ID), domain.ErrLoanNotFound)
}

func TestLoanService_ListFilters(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()
	paid := f.create(t, 1000, 0)
	f.create(t, 2000, 0)
	f.pay(t, paid.ID, 1000)

	all, err := f.svc.List(ctx, repositories.LoanFilter{SocioID: f.member.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.svc.List(ctx, repositories.LoanFilter{Status: domain.LoanPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].SaldoPendiente.Equal(money(2000)))

	_, err = f.svc.List(ctx, repositories.LoanFilter{Status: "NADA"})
	assert.ErrorIs(t, err, domain.ErrInvalidLoanStatus)
}

func TestLoanService_ListInstallmentsNewestFirst(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()
	loan := f.create(t, 1000, 0)

	_, err := f.svc.RegisterInstallment(ctx, loan.ID, InstallmentInput{MontoPago: money(100), FechaPago: "2026-01-10"})
	require.NoError(t, err)
	_, err = f.svc.RegisterInstallment(ctx, loan.ID, InstallmentInput{MontoPago: money(200), FechaPago: "2026-02-10"})
	require.NoError(t, err)

	rows, err := f.svc.ListInstallments(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].MontoPago.Equal(money(200)))
}

func TestLoanService_MarkOverdue(t *testing.T) {
	f := newLoanFixture(t)
	ctx := context.Background()
	open := f.create(t, 1000, 0)
	settled := f.create(t, 1000, 0)
	f.create(t, 1000, 0)

	past := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	require.NoError(t, f.db.Model(&models.Loan{}).Where("id IN ?", []uint{open.ID, settled.ID}).
		Update("fecha_vencimiento", past).Error)
	// Settled without going through the installment path
	require.NoError(t, f.db.Create(&models.LoanInstallment{PrestamoID: settled.ID, FechaPago: past, MontoPago: money(1000)}).Error)

	marked, err := f.svc.MarkOverdue(ctx, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	stored, err := f.svc.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanOverdue, stored.Estado)
}
