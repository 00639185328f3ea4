package repositories

import (
	"context"

	"natillera-miahorro/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// RaffleRepository handles raffle and ticket data access
type RaffleRepository struct {
	db *gorm.DB
}

// NewRaffleRepository creates a new raffle repository
func NewRaffleRepository(db *gorm.DB) *RaffleRepository {
	return &RaffleRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *RaffleRepository) WithTx(tx *gorm.DB) *RaffleRepository {
	return &RaffleRepository{db: tx}
}

// Create creates a raffle without tickets
func (r *RaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	return r.db.WithContext(ctx).Omit("Tickets").Create(raffle).Error
}

// CreateTickets inserts tickets in one batch
func (r *RaffleRepository) CreateTickets(ctx context.Context, tickets []models.RaffleTicket) error {
	return r.db.WithContext(ctx).CreateInBatches(&tickets, 100).Error
}

// GetByID gets a raffle by ID
func (r *RaffleRepository) GetByID(ctx context.Context, id uint) (*models.Raffle, error) {
	var raffle models.Raffle
	if err := r.db.WithContext(ctx).First(&raffle, id).Error; err != nil {
		return nil, err
	}
	return &raffle, nil
}

// List lists raffles by draw date, newest first
func (r *RaffleRepository) List(ctx context.Context) ([]models.Raffle, error) {
	var raffles []models.Raffle
	err := r.db.WithContext(ctx).Order("fecha_evento DESC, id DESC").Find(&raffles).Error
	return raffles, err
}

// ListTickets lists a raffle's tickets ordered by number
func (r *RaffleRepository) ListTickets(ctx context.Context, rifaID uint) ([]models.RaffleTicket, error) {
	var tickets []models.RaffleTicket
	err := r.db.WithContext(ctx).Where("rifa_id = ?", rifaID).Order("numero").Find(&tickets).Error
	return tickets, err
}

// GetTicket gets a ticket by ID
func (r *RaffleRepository) GetTicket(ctx context.Context, id uint) (*models.RaffleTicket, error) {
	var ticket models.RaffleTicket
	if err := r.db.WithContext(ctx).First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicketByNumber gets a raffle's ticket by its two-digit number
func (r *RaffleRepository) GetTicketByNumber(ctx context.Context, rifaID uint, numero string) (*models.RaffleTicket, error) {
	var ticket models.RaffleTicket
	err := r.db.WithContext(ctx).Where("rifa_id = ? AND numero = ?", rifaID, numero).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket saves every column of ticket
func (r *RaffleRepository) UpdateTicket(ctx context.Context, ticket *models.RaffleTicket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

// AssignTicket overwrites the holder and estado of one number. Callers check
// the number exists; MySQL reports unchanged rows as not affected.
func (r *RaffleRepository) AssignTicket(ctx context.Context, rifaID uint, numero, name, phone, estado string) error {
	return r.db.WithContext(ctx).
		Model(&models.RaffleTicket{}).
		Where("rifa_id = ? AND numero = ?", rifaID, numero).
		Updates(map[string]interface{}{
			"nombre_cliente":   name,
			"telefono_cliente": phone,
			"estado":           estado,
		}).Error
}

// CountTickets counts a raffle's tickets in estado; empty estado counts all
func (r *RaffleRepository) CountTickets(ctx context.Context, rifaID uint, estado string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.RaffleTicket{}).Where("rifa_id = ?", rifaID)
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Count(&count).Error
	return count, err
}

// SetWinner stores the winning number, replacing any previous one
func (r *RaffleRepository) SetWinner(ctx context.Context, rifaID uint, numero string) error {
	return r.db.WithContext(ctx).
		Model(&models.Raffle{}).
		Where("id = ?", rifaID).
		Update("numero_ganador", numero).Error
}

// TicketsForHolder lists tickets held under phone or name across raffles
func (r *RaffleRepository) TicketsForHolder(ctx context.Context, phone, name string) ([]models.MemberTicket, error) {
	var tickets []models.MemberTicket
	err := r.db.WithContext(ctx).
		Table("rifa_numeros AS rn").
		Select("r.id AS rifa_id, r.nombre AS rifa_nombre, r.fecha_evento, rn.numero, rn.estado").
		Joins("JOIN rifas r ON r.id = rn.rifa_id").
		Where("(rn.telefono_cliente <> '' AND rn.telefono_cliente = ?) OR (rn.nombre_cliente <> '' AND rn.nombre_cliente = ?)", phone, name).
		Order("r.fecha_evento DESC, rn.numero").
		Scan(&tickets).Error
	return tickets, err
}
