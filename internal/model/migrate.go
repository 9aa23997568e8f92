package model

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates the bot tables. The vector table needs the pgvector
// extension and is skipped unless withVectors is set.
func AutoMigrate(db *gorm.DB, withVectors bool) error {
	models := []interface{}{
		&UserState{},
		&UserBot{},
		&ChatTurn{},
		&TrainedSource{},
	}

	if withVectors {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("enable pgvector: %w", err)
		}
		models = append(models, &KnowledgeChunk{})
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
