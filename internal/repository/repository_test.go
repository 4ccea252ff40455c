package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapPgError(t *testing.T) {
	if mapPgError(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	if !errors.Is(mapPgError(pgx.ErrNoRows), ErrNotFound) {
		t.Fatal("ErrNoRows should map to ErrNotFound")
	}

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"}
	uv, ok := AsUniqueViolation(mapPgError(fmt.Errorf("insert: %w", dup)))
	if !ok {
		t.Fatal("expected UniqueViolation")
	}
	if uv.Field != FieldEmail {
		t.Errorf("Field = %q, want %q", uv.Field, FieldEmail)
	}

	unknown := &pgconn.PgError{Code: "23505", ConstraintName: "some_other_key"}
	uv, ok = AsUniqueViolation(mapPgError(unknown))
	if !ok || uv.Field != "some_other_key" {
		t.Errorf("unexpected violation %+v", uv)
	}

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "reclamations_category_id_fkey"}
	if !errors.Is(mapPgError(fk), ErrNotFound) {
		t.Error("foreign key violation should map to ErrNotFound")
	}

	badID := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	if !errors.Is(mapPgError(fmt.Errorf("select: %w", badID)), ErrNotFound) {
		t.Error("malformed uuid should map to ErrNotFound")
	}

	other := errors.New("boom")
	if mapPgError(other) != other {
		t.Error("unrelated errors pass through")
	}
}
