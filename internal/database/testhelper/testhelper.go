// Package testhelper provides an isolated in-memory store for tests.
package testhelper

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"dynamicapp/internal/config"
	"dynamicapp/internal/database"
)

var counter atomic.Int64

// DSN returns a shared-cache in-memory SQLite DSN unique to this call.
func DSN(t testing.TB) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, counter.Add(1))
}

// OpenSQLite opens a fresh in-memory database with the schema in place.
// The database is closed when the test finishes.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          DSN(t),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}
