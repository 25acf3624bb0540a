package apierror

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a domain error. The HTTP status is derived from it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a classified error. Msg is safe to show to clients; Err is the
// underlying cause and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Msg: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Msg: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }

func Unavailable(msg string, err error) *Error {
	return &Error{Kind: KindUnavailable, Msg: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message for err. Unclassified
// errors never leak their text.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return "Error interno del servidor"
}

// Postgres SQLSTATE codes the ledger cares about.
const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgUniqueViolation     = "23505"
	pgConnectionClass     = "08"
	pgAdminShutdown       = "57P01"
	pgCannotConnectNow    = "57P03"
)

// FromStorage classifies an error returned by the persistence layer.
// Already classified errors and nil pass through unchanged.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgForeignKeyViolation:
			return &Error{Kind: KindNotFound, Msg: "Variante no encontrada", Err: err}
		case pgErr.Code == pgCheckViolation:
			return &Error{Kind: KindValidation, Msg: "El movimiento viola una restriccion del esquema", Err: err}
		case pgErr.Code == pgUniqueViolation:
			return &Error{Kind: KindConflict, Msg: "El registro ya existe", Err: err}
		case strings.HasPrefix(pgErr.Code, pgConnectionClass),
			pgErr.Code == pgAdminShutdown,
			pgErr.Code == pgCannotConnectNow:
			return Unavailable("Base de datos no disponible", err)
		}
		return Internal("error de base de datos", err)
	}

	if pgconn.Timeout(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) {
		return Unavailable("Base de datos no disponible", err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return Unavailable("Base de datos no disponible", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Unavailable("Base de datos no disponible", err)
	}
	return Internal("error de base de datos", err)
}
