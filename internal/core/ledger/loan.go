package ledger

import (
	"fmt"
	"time"

	"natillera-miahorro/internal/core/domain"

	"github.com/shopspring/decimal"
)

// DefaultTermMonths is used when a loan is created without plazo_meses
const DefaultTermMonths = 12

// TotalAmount returns principal × (1 + rate/100) rounded to cents
func TotalAmount(principal, ratePercent decimal.Decimal) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, domain.ErrNonPositiveAmount
	}
	if ratePercent.IsNegative() {
		return decimal.Zero, domain.ErrNegativeRate
	}
	factor := decimal.NewFromInt(1).Add(ratePercent.Div(hundred))
	return Round(principal.Mul(factor)), nil
}

// DueDate adds the term to the approval date
func DueDate(approved time.Time, months int) time.Time {
	if months <= 0 {
		months = DefaultTermMonths
	}
	return approved.AddDate(0, months, 0)
}

// LoanCode is the human-readable identifier printed on documents
func LoanCode(id uint) string {
	return fmt.Sprintf("PRE-%04d", id)
}

// Balance is a loan's position computed from its installment history
type Balance struct {
	Total decimal.Decimal
	Paid  decimal.Decimal
}

// Outstanding is Total - Paid, which may go slightly negative within tolerance
func (b Balance) Outstanding() decimal.Decimal {
	return b.Total.Sub(b.Paid)
}

// IsSettled reports whether Paid covers Total within Tolerance
func (b Balance) IsSettled() bool {
	return b.Paid.Add(Tolerance).GreaterThanOrEqual(b.Total)
}

// DisplayOutstanding clamps sub-tolerance remainders to zero for documents
func (b Balance) DisplayOutstanding() decimal.Decimal {
	o := b.Outstanding()
	if o.LessThan(Tolerance) {
		return decimal.Zero
	}
	return Round(o)
}

// PercentPaid is capped at 100 and rounded to one decimal
func (b Balance) PercentPaid() decimal.Decimal {
	if !b.Total.IsPositive() {
		return decimal.Zero
	}
	pct := b.Paid.Div(b.Total).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.Round(1)
}

// After returns the balance once amount has been paid
func (b Balance) After(amount decimal.Decimal) Balance {
	return Balance{Total: b.Total, Paid: b.Paid.Add(amount)}
}

// ValidateInstallment rejects non-positive amounts, installments on paid
// loans and amounts exceeding the outstanding balance plus Tolerance.
func ValidateInstallment(status string, b Balance, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrNonPositiveAmount
	}
	if status == domain.LoanPaid {
		return domain.ErrLoanAlreadyPaid
	}
	if amount.GreaterThan(b.Outstanding().Add(Tolerance)) {
		return domain.Wrapf(domain.ErrInstallmentExceedsBalance,
			"El monto del abono excede el saldo pendiente (%s)", FormatCOP(b.Outstanding()))
	}
	return nil
}

// EvaluatePayoff returns the loan's estado after the balance is applied and
// whether this evaluation moved it to PAGADO. PAGADO is never left.
func EvaluatePayoff(status string, b Balance) (string, bool) {
	if status == domain.LoanPaid {
		return status, false
	}
	if b.IsSettled() {
		return domain.LoanPaid, true
	}
	return status, false
}
