package ledger

import (
	"errors"
	"testing"
	"time"

	"natillera-miahorro/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTotalAmount(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		want      string
	}{
		{"ten percent", "100000", "10", "110000"},
		{"zero rate", "250000", "0", "250000"},
		{"fractional rate", "100000", "2.5", "102500"},
		{"rounds half away from zero", "0.05", "10", "0.06"},
		{"keeps cents", "1234.56", "3", "1271.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TotalAmount(d(tt.principal), d(tt.rate))
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestTotalAmountRejectsBadInput(t *testing.T) {
	_, err := TotalAmount(decimal.Zero, d("10"))
	assert.ErrorIs(t, err, domain.ErrNonPositiveAmount)

	_, err = TotalAmount(d("100"), d("-1"))
	assert.ErrorIs(t, err, domain.ErrNegativeRate)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestBalance(t *testing.T) {
	b := Balance{Total: d("110000"), Paid: d("80000")}
	assert.True(t, d("30000").Equal(b.Outstanding()))
	assert.False(t, b.IsSettled())
	assert.True(t, d("72.7").Equal(b.PercentPaid()))

	b = Balance{Total: d("110000"), Paid: d("109999.50")}
	assert.True(t, b.IsSettled())
	assert.True(t, b.DisplayOutstanding().IsZero())

	b = Balance{Total: d("100"), Paid: d("100.80")}
	assert.True(t, d("100").Equal(b.PercentPaid()))
}

func TestValidateInstallment(t *testing.T) {
	b := Balance{Total: d("110000"), Paid: d("100000")}

	assert.NoError(t, ValidateInstallment(domain.LoanApproved, b, d("10000")))
	assert.NoError(t, ValidateInstallment(domain.LoanApproved, b, d("10001")), "within tolerance")

	err := ValidateInstallment(domain.LoanApproved, b, d("50000"))
	assert.ErrorIs(t, err, domain.ErrInstallmentExceedsBalance)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "$10.000")

	assert.ErrorIs(t, ValidateInstallment(domain.LoanApproved, b, decimal.Zero), domain.ErrNonPositiveAmount)
	assert.ErrorIs(t, ValidateInstallment(domain.LoanApproved, b, d("-5")), domain.ErrNonPositiveAmount)
	assert.ErrorIs(t, ValidateInstallment(domain.LoanPaid, b, d("5")), domain.ErrLoanAlreadyPaid)
}

func TestEvaluatePayoffSequence(t *testing.T) {
	total, err := TotalAmount(d("100000"), d("10"))
	require.NoError(t, err)

	status := domain.LoanApproved
	b := Balance{Total: total}
	var transitioned bool

	for i, amount := range []string{"40000", "40000", "30000"} {
		require.NoError(t, ValidateInstallment(status, b, d(amount)))
		b = b.After(d(amount))
		status, transitioned = EvaluatePayoff(status, b)
		assert.Equal(t, i == 2, transitioned)
	}
	assert.Equal(t, domain.LoanPaid, status)
	assert.True(t, b.Paid.LessThanOrEqual(b.Total.Add(Tolerance)))

	// Re-evaluating the same totals is stable
	again, moved := EvaluatePayoff(status, b)
	assert.Equal(t, domain.LoanPaid, again)
	assert.False(t, moved)

	assert.ErrorIs(t, ValidateInstallment(status, b, d("1")), domain.ErrLoanAlreadyPaid)
}

func TestDueDateAndCode(t *testing.T) {
	approved := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), DueDate(approved, 12))
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), DueDate(approved, 0))
	assert.Equal(t, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), DueDate(approved, 3))

	assert.Equal(t, "PRE-0001", LoanCode(1))
	assert.Equal(t, "PRE-12345", LoanCode(12345))
}

func TestFormatCOP(t *testing.T) {
	assert.Equal(t, "$110.000", FormatCOP(d("110000")))
	assert.Equal(t, "$0", FormatCOP(decimal.Zero))
	assert.Equal(t, "$1.234,50", FormatCOP(d("1234.5")))
	assert.Equal(t, "$999,05", FormatCOP(d("999.05")))
	assert.Equal(t, "-$1.000.000", FormatCOP(d("-1000000")))
}
