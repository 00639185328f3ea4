package services

import (
	"context"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/core/ledger"

	"github.com/shopspring/decimal"
)

// Mailer delivers transactional email
type Mailer interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

// ChatSender delivers phone-addressed chat messages. Send returns
// domain.ErrChannelNotReady when the session is not authenticated and
// domain.ErrChatOptOut when the member has not opted in.
type ChatSender interface {
	Send(ctx context.Context, msg domain.ChatMessage) error
}

// ReceiptRenderer produces the PDF documents handed to members
type ReceiptRenderer interface {
	WeeklyReceipt(member *models.Member, payment *models.WeeklyPayment) ([]byte, error)
	InstallmentReceipt(member *models.Member, loan *models.Loan, installment *models.LoanInstallment, balance ledger.Balance) ([]byte, error)
	Certificate(member *models.Member, loan *models.Loan, totalPaid decimal.Decimal) ([]byte, error)
}

// Notifier is the asynchronous side of every state change. Implementations
// must return immediately.
type Notifier interface {
	WeeklyPaymentRecorded(member models.Member, payment models.WeeklyPayment)
	InstallmentRecorded(member models.Member, loan models.Loan, installment models.LoanInstallment, balance ledger.Balance, paidOff bool)
	LoanCreated(member models.Member, loan models.Loan)
	RaffleWon(member models.Member, raffle models.Raffle, numero string)
}
