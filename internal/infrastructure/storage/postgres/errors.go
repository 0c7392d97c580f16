package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"stockledger/internal/core/apperror"
)

// PostgreSQL error codes relevant to the ledger write path.
const (
	// lock_not_available: lock_timeout expired while waiting on a row lock
	codeLockNotAvailable = "55P03"
	// query_canceled: statement_timeout expired
	codeQueryCanceled = "57014"
	// unique_violation
	codeUniqueViolation = "23505"
)

// MapError translates low-level pgx errors into application errors.
// Lock waits that exceed the transaction's lock_timeout surface as a
// lock timeout error on the named resource; everything else passes
// through wrapped as a database error by the caller.
func MapError(err error, resource string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeQueryCanceled:
			return apperror.NewLockTimeout(resource).WithCause(err)
		case codeUniqueViolation:
			return apperror.NewBusinessRule("DUPLICATE", "duplicate row violates unique constraint").WithCause(err)
		}
	}

	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
