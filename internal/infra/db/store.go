package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/theorem6/WISPTools-sub003/internal/config"
)

type Store struct {
	DB *gorm.DB
}

// NewStore opens postgres when POSTGRES_DSN is set. Without it the store
// runs in no-db mode: repositories return ErrInfrastructure and the
// fail-open guards decide what that means per check.
func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		return &Store{DB: nil}, nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &Store{DB: gdb}, nil
}

// AutoMigrate creates or updates the schema for all models.
func (s *Store) AutoMigrate() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.AutoMigrate(
		&TenantModel{},
		&UserTenantModel{},
		&InvitationModel{},
		&TenantConfigModel{},
		&SiteModel{},
	)
}
