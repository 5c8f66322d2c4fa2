// Package storagetest открывает временную SQLite базу со схемой для тестов
package storagetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
)

// OpenSQLite создает базу в t.TempDir() и применяет миграции
func OpenSQLite(t testing.TB) *dbmetrics.DB {
	t.Helper()

	raw := OpenRawSQLite(t)
	return dbmetrics.Wrap(raw, nil)
}

// OpenRawSQLite то же, что OpenSQLite, но без обёртки
func OpenRawSQLite(t testing.TB) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "appointments.db")
	db, err := storage.Open(context.Background(), storage.Options{
		Dialect:      sqlbuilder.SQLite,
		DSN:          storage.SQLiteDSN(path),
		MaxOpenConns: 16,
		Migrate:      true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
