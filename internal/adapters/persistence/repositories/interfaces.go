package repositories

import (
	"context"

	"natillera-miahorro/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// MemberFilter narrows the member list
type MemberFilter struct {
	Search string
	Status string
}

// MemberRepository defines member repository interface
type MemberRepository interface {
	WithTx(tx *gorm.DB) MemberRepository
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	ExistsByDocumento(ctx context.Context, documento string, excludeID uint) (bool, error)
	GetByDocumento(ctx context.Context, documento string) (*models.Member, error)
	FindByPhone(ctx context.Context, phone string) (*models.Member, error)
	List(ctx context.Context, filter MemberFilter) ([]models.MemberWithTotal, error)
	ListActive(ctx context.Context) ([]models.Member, error)
	CountByStatus(ctx context.Context, estado string) (int64, error)
	Update(ctx context.Context, member *models.Member) error
}
