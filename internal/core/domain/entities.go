package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERADOR"
)

// Member estados
const (
	MemberActive   = "ACTIVO"
	MemberDisabled = "INHABILITADO"
)

// Weekly payment estados
const (
	PaymentPending   = "PENDIENTE"
	PaymentPaid      = "PAGADO"
	PaymentCancelled = "ANULADO"
)

// Loan estados
const (
	LoanPending   = "PENDIENTE"
	LoanApproved  = "APROBADO"
	LoanPaid      = "PAGADO"
	LoanOverdue   = "VENCIDO"
	LoanCancelled = "CANCELADO"
)

// Raffle ticket estados
const (
	TicketAvailable = "DISPONIBLE"
	TicketReserved  = "RESERVADO"
	TicketPaid      = "PAGADO"
)

// Event estados
const (
	EventUpcoming  = "UPCOMING"
	EventOngoing   = "ONGOING"
	EventCompleted = "COMPLETED"
	EventCancelled = "CANCELLED"
)

// DefaultEventType is used when an event is created without tipo
const DefaultEventType = "GENERAL"

// SystemActor tags audit entries written without an authenticated user
const SystemActor = "SYSTEM"

// IsValidPaymentStatus reports whether s is a weekly payment estado
func IsValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentCancelled
}

// IsValidLoanStatus reports whether s is a loan estado
func IsValidLoanStatus(s string) bool {
	switch s {
	case LoanPending, LoanApproved, LoanPaid, LoanOverdue, LoanCancelled:
		return true
	}
	return false
}

// IsValidTicketStatus reports whether s is a raffle ticket estado
func IsValidTicketStatus(s string) bool {
	return s == TicketAvailable || s == TicketReserved || s == TicketPaid
}

// IsValidEventStatus reports whether s is an event estado
func IsValidEventStatus(s string) bool {
	switch s {
	case EventUpcoming, EventOngoing, EventCompleted, EventCancelled:
		return true
	}
	return false
}

// Attachment is an in-memory file sent with an email
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// EmailMessage is a rendered transactional email
type EmailMessage struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// ChatMessage is a phone-addressed message for the chat channel
type ChatMessage struct {
	MemberID uint
	Phone    string
	Body     string
	OptedIn  bool
}

// StartOfDay truncates t to local midnight
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
