package services

import (
	"context"
	"encoding/json"
	"testing"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func newPaymentService(db *gorm.DB, renderer ReceiptRenderer, notifier Notifier) *PaymentService {
	return NewPaymentService(db, repositories.NewMemberRepository(db), repositories.NewPaymentRepository(db), renderer, notifier)
}

func TestPaymentService_ListByMemberSeedsMissingWeeks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	member := createMember(t, db, "111", "Ana", "")
	require.NoError(t, db.Where("socio_id = ? AND semana > ?", member.ID, 10).Delete(&models.WeeklyPayment{}).Error)

	svc := newPaymentService(db, &testutil.StubRenderer{}, &testutil.RecordingNotifier{})
	rows, err := svc.ListByMember(context.Background(), member.ID)

	require.NoError(t, err)
	require.Len(t, rows, 52)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Semana)
	}

	_, err = svc.ListByMember(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestPaymentService_UpsertTwiceWritesOneRowAndTwoHistoryEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	member := createMember(t, db, "111", "Ana", "3001234567")
	notifier := &testutil.RecordingNotifier{}
	svc := newPaymentService(db, &testutil.StubRenderer{}, notifier)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, UpsertPaymentInput{
		SocioID: member.ID,
		Semana:  5,
		PaymentFields: PaymentFields{
			Valor:     money(10000),
			FechaPago: "2026-02-02",
			FormaPago: "EFECTIVO",
		},
	}, "tesorera")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, first.Estado)

	second, err := svc.Upsert(ctx, UpsertPaymentInput{
		SocioID:       member.ID,
		Semana:        5,
		PaymentFields: PaymentFields{Valor: money(20000), Estado: "pagado"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.PaymentPaid, second.Estado)

	var rows int64
	require.NoError(t, db.Model(&models.WeeklyPayment{}).Where("socio_id = ? AND semana = ?", member.ID, 5).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	history, err := svc.History(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "tesorera", history[0].Usuario)
	assert.Equal(t, domain.SystemActor, history[1].Usuario)
	assert.Equal(t, HistoryUpsert, history[1].Accion)

	var snapshot struct {
		Antes   models.WeeklyPayment `json:"antes"`
		Despues models.WeeklyPayment `json:"despues"`
	}
	require.NoError(t, json.Unmarshal(history[1].Cambios, &snapshot))
	assert.True(t, snapshot.Antes.Valor.Equal(money(10000)))
	assert.True(t, snapshot.Despues.Valor.Equal(money(20000)))

	require.Len(t, notifier.Payments, 1)
	assert.Equal(t, second.ID, notifier.Payments[0].ID)
}

func TestPaymentService_PaidTransitionNotifiesOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	member := createMember(t, db, "111", "Ana", "")
	notifier := &testutil.RecordingNotifier{}
	svc := newPaymentService(db, &testutil.StubRenderer{}, notifier)
	ctx := context.Background()

	paid := UpsertPaymentInput{SocioID: member.ID, Semana: 2, PaymentFields: PaymentFields{Valor: money(5000), Estado: domain.PaymentPaid}}
	_, err := svc.Upsert(ctx, paid, "")
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, paid, "")
	require.NoError(t, err)

	zero := UpsertPaymentInput{SocioID: member.ID, Semana: 3, PaymentFields: PaymentFields{Estado: domain.PaymentPaid}}
	_, err = svc.Upsert(ctx, zero, "")
	require.NoError(t, err)

	assert.Len(t, notifier.Payments, 1)
}

func TestPaymentService_UpsertValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	member := createMember(t, db, "111", "Ana", "")
	svc := newPaymentService(db, &testutil.StubRenderer{}, &testutil.RecordingNotifier{})
	ctx := context.Background()

	tests := []struct {
		name  string
		input UpsertPaymentInput
		want  error
	}{
		{"missing week", UpsertPaymentInput{SocioID: member.ID}, domain.ErrInvalidInput},
		{"week out of range", UpsertPaymentInput{SocioID: member.ID, Semana: 53}, domain.ErrWeekOutOfRange},
		{"unknown member", UpsertPaymentInput{SocioID: 999, Semana: 1}, domain.ErrMemberNotFound},
		{"negative value", UpsertPaymentInput{SocioID: member.ID, Semana: 1, PaymentFields: PaymentFields{Valor: money(-1)}}, domain.ErrInvalidInput},
		{"bad estado", UpsertPaymentInput{SocioID: member.ID, Semana: 1, PaymentFields: PaymentFields{Estado: "DEBE"}}, domain.ErrInvalidPaymentStatus},
		{"bad date", UpsertPaymentInput{SocioID: member.ID, Semana: 1, PaymentFields: PaymentFields{FechaPago: "ayer"}}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(ctx, tt.input, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, int64(0), testutil.CountRows(t, db, "pagos_historial"))
}

func TestPaymentService_UpdateKeepsEstadoWhenOmitted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	member := createMember(t, db, "111", "Ana", "")
	svc := newPaymentService(db, &testutil.StubRenderer{}, &testutil.RecordingNotifier{})
	ctx := context.Background()

	row, err := svc.Upsert(ctx, UpsertPaymentInput{SocioID: member.ID, Semana: 7, PaymentFields: PaymentFields{Valor: money(1000), Estado: domain.PaymentPaid}}, "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, row.ID, PaymentFields{Valor: money(1500)}, "revisor")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, updated.Estado)
	assert.True(t, updated.Valor.Equal(money(1500)))

	history, err := svc.History(ctx, row.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, HistoryUpdate, history[1].Accion)
	assert.Equal(t, "revisor", history[1].Usuario)

	_, err = svc.Update(ctx, 9999, PaymentFields{}, "")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestPaymentService_Receipt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	member := createMember(t, db, "111", "Ana", "")
	renderer := &testutil.StubRenderer{}
	svc := newPaymentService(db, renderer, &testutil.RecordingNotifier{})

	rows, err := svc.ListByMember(context.Background(), member.ID)
	require.NoError(t, err)

	pdf, filename, err := svc.Receipt(context.Background(), rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.StubPDF, pdf)
	assert.Contains(t, filename, ".pdf")
	assert.Equal(t, 1, renderer.Weekly)

	_, _, err = svc.Receipt(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}
