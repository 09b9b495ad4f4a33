package storage

import (
	"fmt"

	"freight-auction/src/interfaces"
	"freight-auction/src/logger"
	"freight-auction/src/models"
)

// -----------------------------------------------------------------------------

// NewArchive builds the archive backend selected by the configuration.
func NewArchive(cfg *models.MConfig, log *logger.Logger) (interfaces.IArchive, error) {
	switch cfg.Storage.DBType {
	case "sqlite":
		return NewSQLiteArchive(cfg, log)
	case "postgres":
		return NewPostgresArchive(cfg, log)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Storage.DBType)
	}
}
