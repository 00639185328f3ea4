package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Loan represents prestamos table
type Loan struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Codigo           string            `gorm:"size:20;index" json:"codigo"`
	SocioID          uint              `gorm:"not null;index" json:"socio_id"`
	Monto            decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"monto"`
	TasaInteres      decimal.Decimal   `gorm:"type:decimal(6,2);not null" json:"tasa_interes"`
	PlazoMeses       int               `gorm:"not null;default:12" json:"plazo_meses"`
	FechaAprobacion  time.Time         `json:"fecha_aprobacion"`
	FechaVencimiento time.Time         `gorm:"index" json:"fecha_vencimiento"`
	MontoTotal       decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"monto_total"`
	Estado           string            `gorm:"size:20;default:'PENDIENTE';index" json:"estado"`
	Observaciones    string            `gorm:"type:text" json:"observaciones"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	Socio            *Member           `gorm:"foreignKey:SocioID" json:"-"`
	Installments     []LoanInstallment `gorm:"foreignKey:PrestamoID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Loan) TableName() string {
	return "prestamos"
}

// LoanSummary is a loan joined with its member and installment totals
type LoanSummary struct {
	Loan
	Nombre1        string          `json:"nombre1"`
	Apellido1      string          `json:"apellido1"`
	Documento      string          `json:"documento"`
	TotalPagado    decimal.Decimal `json:"total_pagado"`
	SaldoPendiente decimal.Decimal `gorm:"-" json:"saldo_pendiente"`
}

// LoanInstallment represents prestamos_pagos table (append-only)
type LoanInstallment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	PrestamoID    uint            `gorm:"not null;index" json:"prestamo_id"`
	FechaPago     time.Time       `json:"fecha_pago"`
	MontoPago     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"monto_pago"`
	FormaPago     string          `gorm:"size:30" json:"forma_pago"`
	Observaciones string          `gorm:"type:text" json:"observaciones"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (LoanInstallment) TableName() string {
	return "prestamos_pagos"
}

// ReceiptNumber is printed on the installment receipt
func (i *LoanInstallment) ReceiptNumber() string {
	return "PRES-AB-" + uintToString(i.ID)
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
