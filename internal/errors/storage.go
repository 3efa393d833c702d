package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapStorageError maps storage connectivity failures to AppError instances with
// messages suitable for the database setup screen.
//
// If err is nil, nil is returned.
func MapStorageError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Timed out connecting to the database.",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "Database check was canceled.",
			Cause:   err,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgConnectError(pgErr)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &AppError{
			Code:    ErrCodeUnavailable,
			Message: "Could not connect to the database server.",
			Cause:   err,
		}
	}

	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: "Storage is not reachable.",
		Cause:   err,
	}
}

func mapPgConnectError(pgErr *pgconn.PgError) error {
	var message string
	switch pgErr.Code {
	case pgerrcode.InvalidPassword, pgerrcode.InvalidAuthorizationSpecification:
		message = "Database authentication failed. Check the configured user and password."
	case pgerrcode.InvalidCatalogName:
		message = "The configured database does not exist."
	case pgerrcode.CannotConnectNow, pgerrcode.AdminShutdown, pgerrcode.CrashShutdown:
		message = "The database server is starting up or shutting down."
	case pgerrcode.TooManyConnections:
		message = "The database server has too many connections."
	case pgerrcode.InsufficientPrivilege:
		message = "The configured database user lacks the required privileges."
	default:
		message = "A database error occurred: " + pgErr.Message
	}
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: message,
		Cause:   pgErr,
	}
}

// DescribeStorageError returns the user-facing description of a storage failure.
func DescribeStorageError(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(MapStorageError(err), &appErr) {
		return appErr.Message
	}
	return err.Error()
}
