package config

import (
	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/logger"
	"natillera-miahorro/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	logger.Log.Info("Running database seeders")

	if err := s.seedAdminUser(); err != nil {
		logger.Log.Warn("Admin seeder skipped", zap.Error(err))
	}

	return nil
}

// seedAdminUser seeds the default admin in development only.
// In production the first admin is registered through /api/auth/register.
func (s *Seeder) seedAdminUser() error {
	if !s.cfg.IsDev() {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash(getEnv("ADMIN_PASSWORD", "admin123456"))
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: getEnv("ADMIN_USERNAME", "admin"),
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	logger.Log.Info("Admin user created", zap.String("username", admin.Username))
	return nil
}
