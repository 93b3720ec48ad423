package repo

import (
	"fmt"

	"FreshKeeper/internal/model"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// InitDB открывает БД и прогоняет миграции.
// Если DSN пуст — используется локальный файл SQLite (dev-режим),
// иначе ожидается строка подключения PostgreSQL.
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if dsn == "" {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: "file:freshkeeper.db?cache=shared"}
	} else {
		dial = postgres.Open(dsn)
	}

	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Миграции для всех моделей ядра
	if err := db.AutoMigrate(&model.Bucket{}, &model.Item{}, &model.Recipe{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}
