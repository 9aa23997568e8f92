package main

import (
	"log"

	"ai-knowledge-bot/internal/bootstrap"
	"ai-knowledge-bot/internal/config"
	"ai-knowledge-bot/pkg/database"
)

func main() {
	// 1. Load Configuration (.env is read by config.Load)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	// 2. Connect and AutoMigrate
	log.Printf("Migrating %s database (vector backend: %s)...", cfg.Database.Driver, cfg.Store.VectorBackend)
	db, err := bootstrap.OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}
	defer database.Close(db)

	if cfg.Database.Driver != database.DriverPostgres {
		log.Println("Success: Database migration completed.")
		return
	}

	// 3. Post-Migration: Views
	log.Println("Creating views...")
	postMigrationSQL := []string{
		`CREATE OR REPLACE VIEW user_bot_overview AS
		 SELECT b.user_id, b.index_dir, b.chunk_count, b.trained_at,
		        COUNT(s.id) AS source_count,
		        COALESCE(st.state, '') AS state
		 FROM user_bots b
		 LEFT JOIN trained_sources s ON s.user_id = b.user_id
		 LEFT JOIN user_states st ON st.user_id = b.user_id
		 GROUP BY b.user_id, b.index_dir, b.chunk_count, b.trained_at, st.state;`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed.")
}
