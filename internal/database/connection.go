package database

import (
	"errors"
	"fmt"

	"github.com/thereayou/party-rooms/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect открывает соединение с Postgres и применяет миграции
func (d *Database) Connect(dsn string) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}

	if err := db.AutoMigrate(&models.Question{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	d.db = db
	return nil
}

// Close закрывает пул соединений
func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
