package sqlbuilder

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Dialect SQL диалект хранилища
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect разбирает имя драйвера из конфигурации
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case Postgres, SQLite:
		return Dialect(s), nil
	default:
		return "", fmt.Errorf("sqlbuilder: unknown dialect %q", s)
	}
}

// Builder возвращает squirrel builder с плейсхолдерами диалекта
func (d Dialect) Builder() squirrel.StatementBuilderType {
	if d == Postgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// Select создает SELECT запрос
func (d Dialect) Select(columns ...string) squirrel.SelectBuilder {
	return d.Builder().Select(columns...)
}

// Insert создает INSERT запрос
func (d Dialect) Insert(table string) squirrel.InsertBuilder {
	return d.Builder().Insert(table)
}

// Update создает UPDATE запрос
func (d Dialect) Update(table string) squirrel.UpdateBuilder {
	return d.Builder().Update(table)
}

// Delete создает DELETE запрос
func (d Dialect) Delete(table string) squirrel.DeleteBuilder {
	return d.Builder().Delete(table)
}
