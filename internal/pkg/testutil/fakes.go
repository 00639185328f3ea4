package testutil

import (
	"sync"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/ledger"

	"github.com/shopspring/decimal"
)

// InstallmentEvent is one recorded InstallmentRecorded call
type InstallmentEvent struct {
	Member      models.Member
	Loan        models.Loan
	Installment models.LoanInstallment
	Balance     ledger.Balance
	PaidOff     bool
}

// WinnerEvent is one recorded RaffleWon call
type WinnerEvent struct {
	Member models.Member
	Raffle models.Raffle
	Numero string
}

// RecordingNotifier keeps every notification instead of sending it
type RecordingNotifier struct {
	mu           sync.Mutex
	Payments     []models.WeeklyPayment
	Installments []InstallmentEvent
	Loans        []models.Loan
	Winners      []WinnerEvent
}

func (n *RecordingNotifier) WeeklyPaymentRecorded(_ models.Member, payment models.WeeklyPayment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Payments = append(n.Payments, payment)
}

func (n *RecordingNotifier) InstallmentRecorded(member models.Member, loan models.Loan, installment models.LoanInstallment, balance ledger.Balance, paidOff bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Installments = append(n.Installments, InstallmentEvent{
		Member:      member,
		Loan:        loan,
		Installment: installment,
		Balance:     balance,
		PaidOff:     paidOff,
	})
}

func (n *RecordingNotifier) LoanCreated(_ models.Member, loan models.Loan) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Loans = append(n.Loans, loan)
}

func (n *RecordingNotifier) RaffleWon(member models.Member, raffle models.Raffle, numero string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Winners = append(n.Winners, WinnerEvent{Member: member, Raffle: raffle, Numero: numero})
}

// StubPDF is what StubRenderer returns for every document
var StubPDF = []byte("%PDF-1.3 stub")

// StubRenderer returns StubPDF and counts calls per document kind
type StubRenderer struct {
	mu           sync.Mutex
	Weekly       int
	Installment  int
	Certificates int
	LastBalance  ledger.Balance
}

func (r *StubRenderer) WeeklyReceipt(_ *models.Member, _ *models.WeeklyPayment) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Weekly++
	return StubPDF, nil
}

func (r *StubRenderer) InstallmentReceipt(_ *models.Member, _ *models.Loan, _ *models.LoanInstallment, balance ledger.Balance) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Installment++
	r.LastBalance = balance
	return StubPDF, nil
}

func (r *StubRenderer) Certificate(_ *models.Member, _ *models.Loan, _ decimal.Decimal) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Certificates++
	return StubPDF, nil
}
