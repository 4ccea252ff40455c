package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidTechnician is returned when assigning an account that is not a technician.
var ErrInvalidTechnician = errors.New("assignee is not a technician")

// ErrTechnicianAssigned is returned when a technician with assigned tickets
// would lose the technician role.
var ErrTechnicianAssigned = errors.New("technician still has assigned tickets")

// Unique fields reported by UniqueViolation.
const (
	FieldEmail    = "email"
	FieldPhone    = "telephone"
	FieldUsername = "username"
	FieldName     = "nom"
)

// UniqueViolation reports a write rejected by a uniqueness constraint.
type UniqueViolation struct {
	Field string
	Err   error
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *UniqueViolation) Unwrap() error {
	return e.Err
}

// AsUniqueViolation extracts a UniqueViolation from err.
func AsUniqueViolation(err error) (*UniqueViolation, bool) {
	var uv *UniqueViolation
	if errors.As(err, &uv) {
		return uv, true
	}
	return nil, false
}

// Clock supplies write timestamps to the stores.
type Clock func() time.Time

// SystemClock returns the current UTC time.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

var constraintFields = map[string]string{
	"accounts_email_key":    FieldEmail,
	"accounts_phone_key":    FieldPhone,
	"accounts_username_key": FieldUsername,
	"categories_name_key":   FieldName,
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// mapPgError translates driver errors to repository errors.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			field, ok := constraintFields[pgErr.ConstraintName]
			if !ok {
				field = pgErr.ConstraintName
			}
			return &UniqueViolation{Field: field, Err: err}
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		case pgInvalidText:
			// a malformed uuid names no row
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.Message)
		}
	}
	return err
}

func clockOrDefault(clock Clock) Clock {
	if clock == nil {
		return SystemClock
	}
	return clock
}
