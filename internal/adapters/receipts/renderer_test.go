package receipts

import (
	"bytes"
	"testing"
	"time"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRenderer() *Renderer {
	r := NewRenderer(Org{Name: "Natillera MiAhorro", City: "Medellín", NIT: "900.000.000-0"})
	r.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return r
}

func testMember() *models.Member {
	return &models.Member{
		ID:        1,
		Documento: "1020304050",
		Nombre1:   "María",
		Apellido1: "Gómez",
		Apellido2: "Peña",
	}
}

func TestWeeklyReceipt(t *testing.T) {
	paid := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	pdf, err := fixedRenderer().WeeklyReceipt(testMember(), &models.WeeklyPayment{
		ID:        7,
		SocioID:   1,
		Semana:    12,
		FechaPago: &paid,
		Valor:     decimal.NewFromInt(20000),
		Estado:    "PAGADO",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestInstallmentReceipt_WithNotes(t *testing.T) {
	loan := &models.Loan{ID: 3, Codigo: "PRE-0003", MontoTotal: decimal.NewFromInt(110000)}
	inst := &models.LoanInstallment{
		ID:            9,
		PrestamoID:    3,
		FechaPago:     time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		MontoPago:     decimal.NewFromInt(40000),
		Observaciones: "Abono en efectivo",
	}
	balance := ledger.Balance{Total: loan.MontoTotal, Paid: decimal.NewFromInt(40000)}

	pdf, err := fixedRenderer().InstallmentReceipt(testMember(), loan, inst, balance)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestCertificate(t *testing.T) {
	loan := &models.Loan{ID: 3, MontoTotal: decimal.NewFromInt(110000), Estado: "PAGADO"}

	pdf, err := fixedRenderer().Certificate(testMember(), loan, decimal.NewFromInt(110000))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "14 de marzo de 2026", longDate(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "N/A", optionalDate(nil))
	assert.Equal(t, "PRE-0042", loanLabel(&models.Loan{ID: 42}))
}
