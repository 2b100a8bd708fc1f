package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds. Every failure returned by the festival services wraps exactly
// one of them, so callers select a status code with errors.Is.
var (
	ErrNotFound          = errors.New("no encontrado")
	ErrInvalidTransition = errors.New("transicion invalida")
	ErrInvalidArgument   = errors.New("argumento invalido")
	ErrUnauthorized      = errors.New("no autorizado")
)

// OpError is a failure with a message fit for the station operator.
type OpError struct {
	Kind error
	Msg  string
}

func (e *OpError) Error() string { return e.Msg }
func (e *OpError) Unwrap() error { return e.Kind }

func notFound(format string, args ...any) error {
	return &OpError{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func invalidTransition(format string, args ...any) error {
	return &OpError{Kind: ErrInvalidTransition, Msg: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...any) error {
	return &OpError{Kind: ErrInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func unauthorized(msg string) error {
	return &OpError{Kind: ErrUnauthorized, Msg: msg}
}

// Postgres SQLSTATEs that mean "try again": lock_timeout, deadlock,
// serialization failure and statement_timeout.
var transientCodes = map[string]bool{
	"55P03": true,
	"40P01": true,
	"40001": true,
	"57014": true,
}

// IsTransient reports whether err is a lock-wait or serialization failure
// that the caller may retry as-is.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && transientCodes[pgErr.Code]
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
