package database

import (
	"context"
	"fmt"
	"log/slog"

	"biolink/internal/config"
	"biolink/internal/middleware"

	"gorm.io/gorm"
)

const (
	SchemaModeAuto = "auto"
	SchemaModeOff  = "off"
)

// SchemaStatus describes what ApplySchema would do and which tables already exist.
type SchemaStatus struct {
	Mode               string
	Environment        string
	Driver             string
	WillRunAutoMigrate bool
	Tables             map[string]bool
}

func normalizedSchemaMode(cfg *config.Config) string {
	if cfg.DBSchemaMode == "" {
		return SchemaModeAuto
	}
	return cfg.DBSchemaMode
}

func schemaPolicy(cfg *config.Config) (runAuto bool, err error) {
	switch mode := normalizedSchemaMode(cfg); mode {
	case SchemaModeAuto:
		return true, nil
	case SchemaModeOff:
		return false, nil
	default:
		return false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// ApplySchema creates or updates the tables once at startup.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}
	if !runAuto {
		middleware.Logger.Info("Schema management disabled", slog.String("mode", SchemaModeOff))
		return nil
	}

	middleware.Logger.Info("Running GORM AutoMigrate",
		slog.String("env", cfg.Env),
		slog.String("driver", db.Dialector.Name()),
	)
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports the schema policy and which managed tables are present.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               normalizedSchemaMode(cfg),
		Environment:        cfg.Env,
		Driver:             db.Dialector.Name(),
		WillRunAutoMigrate: runAuto,
		Tables:             make(map[string]bool),
	}

	migrator := db.WithContext(ctx).Migrator()
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model: %w", err)
		}
		status.Tables[stmt.Schema.Table] = migrator.HasTable(model)
	}

	return status, nil
}
