package bootstrap

import (
	"fmt"

	"ai-knowledge-bot/internal/config"
	"ai-knowledge-bot/internal/model"
	"ai-knowledge-bot/pkg/database"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig maps the database settings onto the connection helper.
func GormConfig(cfg *config.Config) database.GormConfig {
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}
	return database.GormConfig{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		LogLevel: level,
	}
}

// OpenDatabase connects and brings the schema up to date. The vector table is
// only created for the pgvector backend.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewGormDB(GormConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := model.AutoMigrate(db, cfg.Store.VectorBackend == "pgvector"); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
