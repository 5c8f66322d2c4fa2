package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/migrations"
	"github.com/m04kA/SMC-AppointmentService/pkg/migrate"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
)

// Options параметры подключения к хранилищу
type Options struct {
	Dialect         sqlbuilder.Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// SQLiteDSN DSN для modernc.org/sqlite
// busy_timeout ограничивает ожидание блокировки, _txlock=immediate берёт
// блокировку писателя в BEGIN, время хранится в сравнимом текстовом формате
func SQLiteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate&_time_format=sqlite"
}

// Open открывает пул соединений, проверяет его и применяет миграции
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	driver := "postgres"
	if opts.Dialect == sqlbuilder.SQLite {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}

	if opts.Migrate {
		root, err := fs.Sub(migrations.FS, string(opts.Dialect))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("storage: migrations for %s: %w", opts.Dialect, err)
		}
		if err := migrate.Apply(ctx, db, opts.Dialect, root, "."); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

// Isolation уровень изоляции транзакций планировщика для диалекта
// Postgres: READ COMMITTED, каждый запрос после advisory lock видит свежие коммиты.
// SQLite поддерживает только уровень по умолчанию (serializable)
func Isolation(d sqlbuilder.Dialect) sql.IsolationLevel {
	if d == sqlbuilder.Postgres {
		return sql.LevelReadCommitted
	}
	return sql.LevelDefault
}
