// Package bootstrap prepares the control tables at startup: schema migration,
// demo accounts for sandbox mode, and schema cache warm-up.
package bootstrap

import (
	"context"
	"fmt"

	"querygateapi/config"
	"querygateapi/models"
	"querygateapi/pkg/logger"
	"querygateapi/repository"
	"querygateapi/services/schema"
)

// Migrate creates or updates the control tables. Sandbox mode skips this
// step because the embedded server defines its tables before any connection
// is opened.
func Migrate() error {
	logger.Infof("Starting control table migration...")
	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.RolePermission{},
		&models.QueryHistory{},
		&models.SavedQuery{},
	); err != nil {
		logger.Errorf("Failed to migrate control tables: %v", err)
		return fmt.Errorf("failed to migrate control tables: %v", err)
	}
	logger.Infof("Control table migration completed successfully")
	return nil
}

// SeedDemo populates demo accounts and grants when the users table is empty.
// The accounts cover the access shapes worth demonstrating against the
// sandbox data: an admin with implicit full access, an analyst behind a row
// filter and a column allow-list, a read-only viewer, and a deactivated
// account whose grants no longer count.
func SeedDemo() error {
	userRepo := repository.NewUserRepository()
	permRepo := repository.NewRolePermissionRepository()

	n, err := userRepo.Count(nil)
	if err != nil {
		logger.Errorf("Failed to count users: %v", err)
		return fmt.Errorf("failed to count users: %v", err)
	}
	if n > 0 {
		logger.Infof("Users table already populated (%d rows), skipping demo seed", n)
		return nil
	}

	logger.Infof("Seeding demo accounts...")

	users := []models.User{
		{Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true},
		{Username: "analyst", Email: "analyst@example.com", Role: models.RoleAnalyst, IsActive: true},
		{Username: "viewer", Email: "viewer@example.com", Role: models.RoleViewer, IsActive: true},
		{Username: "contractor", Email: "contractor@example.com", Role: models.RoleAnalyst, IsActive: false},
	}
	for i := range users {
		if err := userRepo.Create(nil, &users[i]); err != nil {
			logger.Errorf("Failed to create demo user %s: %v", users[i].Username, err)
			return fmt.Errorf("failed to create demo user %s: %v", users[i].Username, err)
		}
	}

	analyst := users[1].ID
	viewer := users[2].ID
	contractor := users[3].ID

	grants := []models.RolePermission{
		{UserID: analyst, Table: "orders", CanSelect: true, RowFilter: "region = 'EMEA'"},
		{UserID: analyst, Table: "customers", CanSelect: true},
		{UserID: analyst, Table: "products", CanSelect: true},
		{UserID: viewer, Table: "products", CanSelect: true},
		// Granted but inactive: requests still come back denied.
		{UserID: contractor, Table: "orders", CanSelect: true},
	}
	if err := grants[1].SetColumnAllowList([]string{"id", "name", "region", "tier"}); err != nil {
		return fmt.Errorf("failed to encode demo column list: %v", err)
	}
	for i := range grants {
		grants[i].SchemaName = config.Cfg.DBName
		if err := permRepo.Upsert(nil, &grants[i]); err != nil {
			logger.Errorf("Failed to seed grant for user %d on %s: %v", grants[i].UserID, grants[i].Table, err)
			return fmt.Errorf("failed to seed grant for user %d on %s: %v", grants[i].UserID, grants[i].Table, err)
		}
	}

	logger.Infof("Seeded %d demo users and %d grants", len(users), len(grants))
	return nil
}

// WarmSchema lists the query schema and describes every table so the first
// requests hit a warm schema cache tier.
func WarmSchema(ctx context.Context, src schema.Source) error {
	tables, err := src.Tables(ctx, config.Cfg.DBName)
	if err != nil {
		logger.Errorf("Failed to warm schema cache: %v", err)
		return fmt.Errorf("failed to warm schema cache: %v", err)
	}
	for _, table := range tables {
		if _, err := src.Describe(ctx, config.Cfg.DBName, table); err != nil {
			logger.Errorf("Failed to describe %s during warm-up: %v", table, err)
			return fmt.Errorf("failed to describe %s during warm-up: %v", table, err)
		}
	}
	logger.Infof("Warmed schema cache for %d tables in %s", len(tables), config.Cfg.DBName)
	return nil
}
