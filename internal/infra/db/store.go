package db

import (
	"errors"
	"fmt"
	"log"

	"yundao/internal/config"
	"yundao/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("database unavailable")

type Store struct {
	DB *gorm.DB

	Users      *UserRepository
	Subjects   *SubjectRepository
	Departs    *DepartRepository
	Activities *ActivityRepository
}

func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		log.Printf("POSTGRES_DSN not set; starting in no-db mode.")
		return newStore(nil), nil
	}

	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return newStore(gdb), nil
}

func newStore(gdb *gorm.DB) *Store {
	return &Store{
		DB:         gdb,
		Users:      NewUserRepository(gdb),
		Subjects:   NewSubjectRepository(gdb),
		Departs:    NewDepartRepository(gdb),
		Activities: NewActivityRepository(gdb),
	}
}

func (s *Store) Migrate() error {
	if s.DB == nil {
		return nil
	}
	if err := s.DB.AutoMigrate(
		&UserModel{},
		&RolePermissionModel{},
		&DeviceBindingModel{},
		&SubjectModel{},
		&DepartModel{},
		&ActivityModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return s.seedRolePermissions()
}

// seedRolePermissions installs the default role grants; existing rows are
// left alone so operators can tighten them.
func (s *Store) seedRolePermissions() error {
	var count int64
	if err := s.DB.Model(&RolePermissionModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	grants := map[string][]string{
		domain.RoleAdmin: {
			domain.PermissionAdd, domain.PermissionDelete, domain.PermissionView,
			domain.PermissionModify, domain.PermissionRelease, domain.PermissionLock,
			domain.PermissionExamine, domain.PermissionDisable,
		},
		domain.RoleManager: {
			domain.PermissionAdd, domain.PermissionView, domain.PermissionModify,
			domain.PermissionLock, domain.PermissionDisable,
		},
		domain.RolePublisher: {
			domain.PermissionAdd, domain.PermissionView, domain.PermissionRelease,
		},
		domain.RoleAuditor: {
			domain.PermissionView, domain.PermissionExamine,
		},
		domain.RoleUser: {
			domain.PermissionView,
		},
	}
	var rows []RolePermissionModel
	for role, permissions := range grants {
		for _, permission := range permissions {
			rows = append(rows, RolePermissionModel{Role: role, Permission: permission})
		}
	}
	return s.DB.Create(&rows).Error
}
