package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes we translate
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

type constraintCode struct {
	code    string
	message string
}

var (
	constraintMu sync.RWMutex
	constraints  = map[string]constraintCode{}
)

// RegisterConstraint binds a database constraint name to a client code.
// Domains call it from init so the translation table lives next to the schema it describes.
func RegisterConstraint(name, code, message string) {
	constraintMu.Lock()
	defer constraintMu.Unlock()
	constraints[name] = constraintCode{code: code, message: message}
}

func lookupConstraint(name string) (constraintCode, bool) {
	constraintMu.RLock()
	defer constraintMu.RUnlock()
	c, ok := constraints[name]
	return c, ok
}

// Translate normalizes any error into an *Error.
// Errors that already are *Error pass through unchanged.
func Translate(err error) *Error {
	if err == nil {
		return nil
	}

	if appErr, ok := As(err); ok {
		return appErr
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("NOT_FOUND", "Resource not found")
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return FromValidation(verrs)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromPgError(pgErr)
	}

	return Storage(err)
}

func fromPgError(pgErr *pgconn.PgError) *Error {
	details := map[string]any{}
	if pgErr.ConstraintName != "" {
		details["constraint"] = pgErr.ConstraintName
	}

	if c, ok := lookupConstraint(pgErr.ConstraintName); ok {
		return &Error{Kind: KindConflict, Code: c.code, Message: c.message, Details: details, Err: pgErr}
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return &Error{Kind: KindConflict, Code: "DUPLICATE", Message: "Resource already exists", Details: details, Err: pgErr}
	case pgForeignKeyViolation:
		return &Error{Kind: KindConflict, Code: "REFERENCE_VIOLATION", Message: "Resource is referenced by or references a missing record", Details: details, Err: pgErr}
	case pgNotNullViolation:
		if pgErr.ColumnName != "" {
			details["field"] = pgErr.ColumnName
		}
		return &Error{Kind: KindConflict, Code: "REQUIRED_FIELD_MISSING", Message: "A required field is missing", Details: details, Err: pgErr}
	case pgCheckViolation:
		return &Error{Kind: KindConflict, Code: "CONSTRAINT_VIOLATION", Message: "A value violates a data constraint", Details: details, Err: pgErr}
	}

	return Storage(pgErr)
}

// FromValidation turns ozzo-validation field errors into a ValidationError
// with one detail entry per field.
func FromValidation(verrs validation.Errors) *Error {
	fields := make(map[string]any, len(verrs))
	names := make([]string, 0, len(verrs))
	for field, ferr := range verrs {
		if ferr == nil {
			continue
		}
		fields[field] = ferr.Error()
		names = append(names, field)
	}
	sort.Strings(names)

	return &Error{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("Invalid fields: %s", strings.Join(names, ", ")),
		Details: map[string]any{"fields": fields},
		Err:     verrs,
	}
}

// Validate runs v.Validate and converts the result
func Validate(v validation.Validatable) error {
	if err := v.Validate(); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return FromValidation(verrs)
		}
		return Validation("VALIDATION_ERROR", err.Error())
	}
	return nil
}
