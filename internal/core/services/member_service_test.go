package services

import (
	"context"
	"testing"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMemberService(db *gorm.DB) *MemberService {
	return NewMemberService(db, repositories.NewMemberRepository(db), repositories.NewPaymentRepository(db))
}

func createMember(t *testing.T, db *gorm.DB, documento, nombre, telefono string) *models.Member {
	t.Helper()

	enabled := true
	member, err := newMemberService(db).Create(context.Background(), MemberInput{
		Documento:       documento,
		Nombre1:         nombre,
		Apellido1:       "Restrepo",
		Correo:          nombre + "@example.com",
		Telefono:        telefono,
		WhatsappEnabled: &enabled,
	})
	require.NoError(t, err)
	return member
}

func TestMemberService_CreateSeedsFullYear(t *testing.T) {
	db := testutil.SetupTestDB(t)

	member := createMember(t, db, "1020304050", "Ana", "3001234567")

	assert.NotZero(t, member.ID)
	assert.Equal(t, domain.MemberActive, member.Estado)
	assert.Equal(t, int64(52), testutil.CountRows(t, db, "pagos"))

	var pending int64
	require.NoError(t, db.Model(&models.WeeklyPayment{}).
		Where("socio_id = ? AND estado = ?", member.ID, domain.PaymentPending).
		Count(&pending).Error)
	assert.Equal(t, int64(52), pending)
}

func TestMemberService_CreateRejectsDuplicateDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	createMember(t, db, "1020304050", "Ana", "")

	_, err := newMemberService(db).Create(context.Background(), MemberInput{
		Documento: " 1020304050 ",
		Nombre1:   "Otra",
		Apellido1: "Persona",
	})

	assert.ErrorIs(t, err, domain.ErrDocumentTaken)
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
	assert.Equal(t, int64(1), testutil.CountRows(t, db, "socios"))
	assert.Equal(t, int64(52), testutil.CountRows(t, db, "pagos"))
}

func TestMemberService_CreateValidatesRequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := newMemberService(db).Create(context.Background(), MemberInput{Documento: "1"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(0), testutil.CountRows(t, db, "socios"))
}

func TestMemberService_ListSearchesAndTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ana := createMember(t, db, "111", "Ana", "3001111111")
	createMember(t, db, "222", "Beatriz", "3002222222")

	payments := newPaymentService(db, &testutil.StubRenderer{}, &testutil.RecordingNotifier{})
	_, err := payments.Upsert(context.Background(), UpsertPaymentInput{
		SocioID:       ana.ID,
		Semana:        1,
		PaymentFields: PaymentFields{Valor: money(20000), Estado: domain.PaymentPaid},
	}, "")
	require.NoError(t, err)

	svc := newMemberService(db)

	all, err := svc.List(context.Background(), repositories.MemberFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	found, err := svc.List(context.Background(), repositories.MemberFilter{Search: "ANA"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ana.ID, found[0].ID)
	assert.True(t, found[0].TotalAhorrado.Equal(money(20000)))

	_, err = svc.List(context.Background(), repositories.MemberFilter{Status: "BORRADO"})
	assert.ErrorIs(t, err, domain.ErrInvalidMemberState)
}

func TestMemberService_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	member := createMember(t, db, "111", "Ana", "")
	svc := newMemberService(db)

	disabled, err := svc.SetStatus(context.Background(), member.ID, "inhabilitado")
	require.NoError(t, err)
	assert.Equal(t, domain.MemberDisabled, disabled.Estado)
	assert.NotNil(t, disabled.InhabilitadoEn)

	active, err := svc.SetStatus(context.Background(), member.ID, domain.MemberActive)
	require.NoError(t, err)
	assert.Nil(t, active.InhabilitadoEn)

	_, err = svc.SetStatus(context.Background(), member.ID, "OTRO")
	assert.ErrorIs(t, err, domain.ErrInvalidMemberState)

	_, err = svc.SetStatus(context.Background(), 999, domain.MemberActive)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestMemberService_UpdateKeepsDocumentUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	createMember(t, db, "111", "Ana", "")
	beatriz := createMember(t, db, "222", "Beatriz", "")
	svc := newMemberService(db)

	_, err := svc.Update(context.Background(), beatriz.ID, MemberInput{
		Documento: "111",
		Nombre1:   "Beatriz",
		Apellido1: "Restrepo",
	})
	assert.ErrorIs(t, err, domain.ErrDocumentTaken)

	updated, err := svc.Update(context.Background(), beatriz.ID, MemberInput{
		Documento: "222",
		Nombre1:   "Beatriz",
		Nombre2:   "Elena",
		Apellido1: "Restrepo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Beatriz Elena Restrepo", updated.FullName())
}
