// Package dbtest 提供基于内存 sqlite 的测试库
package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"ecommerce-api/internal/core/database"
)

// New 每次返回一个独立、已迁移的内存库；单连接保证同一个 :memory: 实例
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
