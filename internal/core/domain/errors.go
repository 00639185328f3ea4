package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP status codes.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error is a user-facing failure. Kind is either one of the error kinds
// above or another *Error, so errors.Is matches both the specific error
// and the kind it belongs to.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError creates an error of the given kind
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Invalidf creates a validation error
func Invalidf(format string, args ...interface{}) error {
	return NewError(ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFoundf creates a not-found error
func NotFoundf(format string, args ...interface{}) error {
	return NewError(ErrNotFound, fmt.Sprintf(format, args...))
}

// Wrapf specializes an existing *Error with a more detailed message
func Wrapf(base error, format string, args ...interface{}) error {
	return NewError(base, fmt.Sprintf(format, args...))
}

// Message extracts the user-facing message, falling back when err carries none
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// Member errors
var (
	ErrMemberNotFound     = NewError(ErrNotFound, "Socio no encontrado")
	ErrDocumentTaken      = NewError(ErrDuplicateEntry, "Documento ya registrado")
	ErrInvalidMemberState = NewError(ErrInvalidInput, "Estado inválido (ACTIVO o INHABILITADO)")
)

// Weekly payment errors
var (
	ErrWeekOutOfRange       = NewError(ErrInvalidInput, "Semana inválida (1-52)")
	ErrPaymentNotFound      = NewError(ErrNotFound, "Pago no encontrado")
	ErrInvalidPaymentStatus = NewError(ErrInvalidInput, "Estado de pago inválido (PENDIENTE, PAGADO o ANULADO)")
)

// Loan errors
var (
	ErrLoanNotFound              = NewError(ErrNotFound, "Préstamo no encontrado")
	ErrInstallmentNotFound       = NewError(ErrNotFound, "Abono no encontrado")
	ErrLoanAlreadyPaid           = NewError(ErrInvalidInput, "Este préstamo ya ha sido pagado en su totalidad. No se pueden registrar más abonos.")
	ErrInstallmentExceedsBalance = NewError(ErrInvalidInput, "El monto del abono excede el saldo pendiente")
	ErrNonPositiveAmount         = NewError(ErrInvalidInput, "El monto debe ser mayor a cero")
	ErrNegativeRate              = NewError(ErrInvalidInput, "La tasa de interés no puede ser negativa")
	ErrInvalidLoanStatus         = NewError(ErrInvalidInput, "Estado de préstamo inválido")
	ErrLoanStatusLocked          = NewError(ErrInvalidInput, "Un préstamo pagado no puede cambiar de estado")
	ErrTotalBelowPaid            = NewError(ErrInvalidInput, "El nuevo total del préstamo es menor a lo ya abonado")
)

// Raffle errors
var (
	ErrRaffleNotFound          = NewError(ErrNotFound, "Rifa no encontrada")
	ErrTicketNotFound          = NewError(ErrNotFound, "Número no encontrado")
	ErrInvalidTicketNumber     = NewError(ErrInvalidInput, "Número inválido (00-99)")
	ErrInvalidTicketStatus     = NewError(ErrInvalidInput, "Estado de número inválido (DISPONIBLE, RESERVADO o PAGADO)")
	ErrNoEligibleRecipients    = NewError(ErrInvalidInput, "No hay socios activos para repartir los números")
	ErrDistributionUnconfirmed = NewError(ErrInvalidInput, "La repartición reemplaza todas las asignaciones; envíe confirmar=true")
	ErrPaidTicketsPresent      = NewError(ErrInvalidInput, "La rifa tiene números pagados; envíe incluir_pagados=true para reasignarlos")
)

// Event errors
var (
	ErrEventNotFound      = NewError(ErrNotFound, "Evento no encontrado")
	ErrInvalidEventStatus = NewError(ErrInvalidInput, "Estado de evento inválido")
)

// User errors
var (
	ErrUserNotFound      = NewError(ErrNotFound, "Usuario no encontrado")
	ErrUserAlreadyExists = NewError(ErrDuplicateEntry, "El usuario ya existe")
	ErrWeakPassword      = NewError(ErrInvalidInput, "La contraseña debe tener al menos 8 caracteres")
	ErrLoginFailed       = NewError(ErrInvalidCredentials, "Usuario o contraseña incorrectos")
	ErrUserInactive      = NewError(ErrUnauthorized, "Usuario inactivo")
)

// Notification channel errors
var (
	ErrChannelNotReady = errors.New("chat channel not ready")
	ErrChatOptOut      = errors.New("member has not opted in to chat messages")
)
