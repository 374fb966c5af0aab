package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/flashmark/flashmark/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"
)

// mapError maps a database error onto the store error hierarchy,
// keeping the entity and operation that hit it for debugging context.
func mapError(err error, entity, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, operation, entity)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %s %s (%s): %v", store.ErrConflict, operation, entity, pgErr.ConstraintName, err)
		case foreignKeyViolationCode, checkViolationCode:
			return fmt.Errorf("%w: %s %s (%s): %v", store.ErrValidation, operation, entity, pgErr.ConstraintName, err)
		}
	}

	return store.StorageError(entity, operation, err)
}

// isUniqueViolation checks if the given error is a unique constraint
// violation, used to turn duplicate deck names into ErrDeckNameExists.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// isForeignKeyViolation checks if the given error is a foreign key
// violation, used to turn a dangling deck reference into ErrDeckNotFound.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// checkRowsAffected turns a zero-row UPDATE or DELETE into notFound,
// which is how those operations detect a missing target.
func checkRowsAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: reading rows affected: %w", store.ErrStorage, err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
