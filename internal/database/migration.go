package database

import (
	"fmt"
	"path/filepath"

	"itinventory/internal/database/migration"

	"go.uber.org/zap"
)

func RunMigrations(dbURL string, migrationsDir string, logger *zap.Logger) error {
	if dbURL == "" {
		return fmt.Errorf("database url is not set")
	}

	absPath, err := filepath.Abs(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	return migration.Migrate(dbURL, "file://"+absPath, true, logger)
}
