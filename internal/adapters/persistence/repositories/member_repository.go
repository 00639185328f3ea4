package repositories

import (
	"context"
	"strings"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/domain"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *memberRepository) WithTx(tx *gorm.DB) MemberRepository {
	return &memberRepository{db: tx}
}

// Create creates a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByDocumento gets a member by identity document
func (r *memberRepository) GetByDocumento(ctx context.Context, documento string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("documento = ?", documento).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ExistsByDocumento checks the document against every member except excludeID
func (r *memberRepository) ExistsByDocumento(ctx context.Context, documento string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Member{}).Where("documento = ?", documento)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// FindByPhone returns the first member registered with phone
func (r *memberRepository) FindByPhone(ctx context.Context, phone string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("telefono = ?", strings.TrimSpace(phone)).
		Order("id").
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// List lists members with the sum of their paid weekly contributions
func (r *memberRepository) List(ctx context.Context, filter MemberFilter) ([]models.MemberWithTotal, error) {
	var rows []models.MemberWithTotal

	q := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("socios.*, COALESCE(SUM(pagos.valor), 0) AS total_ahorrado").
		Joins("LEFT JOIN pagos ON pagos.socio_id = socios.id AND pagos.estado = ?", domain.PaymentPaid).
		Group("socios.id")

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"LOWER(socios.documento) LIKE ? OR LOWER(socios.nombre1) LIKE ? OR LOWER(socios.nombre2) LIKE ? OR "+
				"LOWER(socios.apellido1) LIKE ? OR LOWER(socios.apellido2) LIKE ? OR LOWER(socios.correo) LIKE ? OR socios.telefono LIKE ?",
			like, like, like, like, like, like, like,
		)
	}
	if filter.Status != "" {
		q = q.Where("socios.estado = ?", filter.Status)
	}

	err := q.Order("socios.id DESC").Scan(&rows).Error
	return rows, err
}

// ListActive lists members eligible for raffle tickets, oldest first
func (r *memberRepository) ListActive(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).
		Where("estado = ?", domain.MemberActive).
		Order("id").
		Find(&members).Error
	return members, err
}

// CountByStatus counts members in estado
func (r *memberRepository) CountByStatus(ctx context.Context, estado string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Where("estado = ?", estado).Count(&count).Error
	return count, err
}

// Update saves every column of member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}
