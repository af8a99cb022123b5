package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/VAshish07243/Chai-Shots/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes creates the indexes AutoMigrate cannot express. The partial
// index keeps the scheduler's due-lesson scan proportional to scheduled rows.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_lesson_scheduled_publish_at ON lesson (publish_at) WHERE status = 'scheduled'`,
		`CREATE INDEX IF NOT EXISTS idx_program_published_at ON program (published_at DESC) WHERE status = 'published'`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}
