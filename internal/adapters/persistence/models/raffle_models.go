package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Raffle represents rifas table
type Raffle struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Nombre        string         `gorm:"size:120;not null" json:"nombre"`
	Descripcion   string         `gorm:"type:text" json:"descripcion"`
	FechaEvento   *time.Time     `json:"fecha_evento"`
	Frecuencia    string         `gorm:"size:30" json:"frecuencia"`
	NumeroGanador *string        `gorm:"size:2" json:"numero_ganador"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	Tickets       []RaffleTicket `gorm:"foreignKey:RifaID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Raffle) TableName() string {
	return "rifas"
}

// RaffleTicket represents rifa_numeros table. Exactly 100 per raffle.
type RaffleTicket struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	RifaID          uint            `gorm:"not null;uniqueIndex:idx_rifa_numero" json:"rifa_id"`
	Numero          string          `gorm:"size:2;not null;uniqueIndex:idx_rifa_numero" json:"numero"`
	Precio          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"precio"`
	NombreCliente   string          `gorm:"size:120" json:"nombre_cliente"`
	TelefonoCliente string          `gorm:"size:30;index" json:"telefono_cliente"`
	Estado          string          `gorm:"size:20;default:'DISPONIBLE'" json:"estado"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RaffleTicket) TableName() string {
	return "rifa_numeros"
}

// MemberTicket is a ticket held by a member, with its raffle
type MemberTicket struct {
	RifaID      uint       `json:"rifa_id"`
	RifaNombre  string     `json:"rifa_nombre"`
	FechaEvento *time.Time `json:"fecha_evento"`
	Numero      string     `json:"numero"`
	Estado      string     `json:"estado"`
}

// ============================================================
// Events
// ============================================================

// Event represents eventos table
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Nombre      string    `gorm:"size:120;not null" json:"nombre"`
	Descripcion string    `gorm:"type:text" json:"descripcion"`
	Fecha       time.Time `gorm:"not null;index" json:"fecha"`
	Tipo        string    `gorm:"size:30;default:'GENERAL'" json:"tipo"`
	Estado      string    `gorm:"size:20;default:'UPCOMING';index" json:"estado"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Event) TableName() string {
	return "eventos"
}

// ============================================================
// Chat delivery log
// ============================================================

// WhatsappLog represents whatsapp_logs table. One row per send attempt.
type WhatsappLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SocioID      *uint     `gorm:"index" json:"socio_id"`
	Telefono     string    `gorm:"size:30" json:"telefono"`
	Mensaje      string    `gorm:"type:text" json:"mensaje"`
	Status       string    `gorm:"size:10;not null" json:"status"`
	Sid          string    `gorm:"size:64" json:"sid,omitempty"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (WhatsappLog) TableName() string {
	return "whatsapp_logs"
}

// Delivery outcomes for WhatsappLog.Status
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)
