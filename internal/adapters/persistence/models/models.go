package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ============================================================
// Auth
// ============================================================

// User represents users table
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:20;default:'OPERADOR'" json:"role"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}

// ============================================================
// Members & weekly contributions
// ============================================================

// Member represents socios table
type Member struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Documento       string     `gorm:"uniqueIndex;size:30;not null" json:"documento"`
	Nombre1         string     `gorm:"size:60;not null" json:"nombre1"`
	Nombre2         string     `gorm:"size:60" json:"nombre2"`
	Apellido1       string     `gorm:"size:60;not null" json:"apellido1"`
	Apellido2       string     `gorm:"size:60" json:"apellido2"`
	Correo          string     `gorm:"size:120" json:"correo"`
	Telefono        string     `gorm:"size:30;index" json:"telefono"`
	FotoURL         string     `gorm:"size:255" json:"foto_url"`
	FirmaURL        string     `gorm:"size:255" json:"firma_url"`
	Estado          string     `gorm:"size:20;default:'ACTIVO';index" json:"estado"`
	InhabilitadoEn  *time.Time `json:"inhabilitado_en"`
	WhatsappEnabled bool       `gorm:"default:false" json:"whatsapp_enabled"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "socios"
}

// FullName joins the non-empty name parts
func (m *Member) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{m.Nombre1, m.Nombre2, m.Apellido1, m.Apellido2} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// ShortName is first name and first surname
func (m *Member) ShortName() string {
	return strings.TrimSpace(m.Nombre1 + " " + m.Apellido1)
}

// MemberWithTotal is a member row with the sum of its weekly payments
type MemberWithTotal struct {
	Member
	TotalAhorrado decimal.Decimal `json:"total_ahorrado"`
}

// WeeklyPayment represents pagos table. One row per (socio, semana).
type WeeklyPayment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SocioID       uint            `gorm:"not null;uniqueIndex:idx_pagos_socio_semana" json:"socio_id"`
	Semana        int             `gorm:"not null;uniqueIndex:idx_pagos_socio_semana" json:"semana"`
	FechaPago     *time.Time      `json:"fecha_pago"`
	FormaPago     string          `gorm:"size:30" json:"forma_pago"`
	Valor         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"valor"`
	NombrePagador string          `gorm:"size:120" json:"nombre_pagador"`
	FirmaRecibe   string          `gorm:"size:120" json:"firma_recibe"`
	Estado        string          `gorm:"size:20;default:'PENDIENTE';index" json:"estado"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WeeklyPayment) TableName() string {
	return "pagos"
}

// ReceiptNumber is printed on the weekly receipt
func (p *WeeklyPayment) ReceiptNumber() string {
	return "SEM-" + uintToString(p.ID)
}

// PaymentHistory represents pagos_historial table (append-only)
type PaymentHistory struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PagoID    uint           `gorm:"not null;index" json:"pago_id"`
	SocioID   uint           `gorm:"not null;index" json:"socio_id"`
	Semana    int            `gorm:"not null" json:"semana"`
	Accion    string         `gorm:"size:20;not null" json:"accion"`
	Cambios   datatypes.JSON `json:"cambios"`
	Usuario   string         `gorm:"size:50;default:'SYSTEM'" json:"usuario"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentHistory) TableName() string {
	return "pagos_historial"
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Member{},
		&WeeklyPayment{},
		&PaymentHistory{},
		&Loan{},
		&LoanInstallment{},
		&Raffle{},
		&RaffleTicket{},
		&Event{},
		&WhatsappLog{},
	)
}
