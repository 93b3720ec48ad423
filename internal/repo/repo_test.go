package repo

import (
	"FreshKeeper/internal/model"
	"testing"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB инициализирует in-memory SQLite (modernc.org/sqlite) для тестов репозитория
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file::memory:?cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	// Миграции для всех моделей, используемых в репозиториях
	if err := db.AutoMigrate(&model.Bucket{}, &model.Item{}, &model.Recipe{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	// изолируем тесты друг от друга: cache=shared переиспользует одну БД
	t.Cleanup(func() {
		db.Exec("DELETE FROM recipes")
		db.Exec("DELETE FROM items")
		db.Exec("DELETE FROM buckets")
	})
	return db
}
