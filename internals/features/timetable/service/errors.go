package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* =========================
   Error taxonomy
   ========================= */

// ValidationError: missing or malformed input, rejected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ConflictError: double-booking of a teacher, room, class group or substitute.
type ConflictError struct {
	Conflict *Conflict
}

func (e *ConflictError) Error() string {
	if e.Conflict == nil {
		return "conflict"
	}
	return e.Conflict.Message
}

// NotFoundError: a referenced id does not exist in this school.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// IntegrityError: the store refused a write because of a reference or
// uniqueness constraint.
type IntegrityError struct {
	Message string
	Err     error
}

func (e *IntegrityError) Error() string { return e.Message }
func (e *IntegrityError) Unwrap() error { return e.Err }

// TransientError: store or connection failure.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

/* =========================
   Constructors
   ========================= */

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(resource string, id uuid.UUID) error {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// isClassified reports whether err already belongs to the taxonomy.
func isClassified(err error) bool {
	var (
		ve *ValidationError
		ce *ConflictError
		ne *NotFoundError
		ie *IntegrityError
		te *TransientError
	)
	return errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &ne) ||
		errors.As(err, &ie) || errors.As(err, &te)
}

// storeErr classifies a raw gorm/driver error.
//
// 23503 = foreign_key_violation
// 23505 = unique_violation
// 23P01 = exclusion_violation
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return &IntegrityError{Message: "the record is still referenced by other data", Err: err}
		case "23505":
			return &IntegrityError{Message: "a record with the same key already exists", Err: err}
		case "23P01":
			return &IntegrityError{Message: "the record overlaps an existing booking", Err: err}
		}
	}
	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &IntegrityError{Message: "the record is still referenced by other data", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &IntegrityError{Message: "a record with the same key already exists", Err: err}
	}
	return &TransientError{Op: op, Err: err}
}

// logFailure logs the failures the caller cannot fix itself; validation,
// conflict and not-found outcomes pass through silently.
func logFailure(lg *zap.Logger, op string, schoolID uuid.UUID, err error) error {
	if err == nil || lg == nil {
		return err
	}
	var (
		ie *IntegrityError
		te *TransientError
	)
	switch {
	case errors.As(err, &ie):
		lg.Warn("integrity violation", zap.String("op", op), zap.Stringer("school_id", schoolID), zap.Error(ie.Err))
	case errors.As(err, &te):
		lg.Error("store failure", zap.String("op", op), zap.Stringer("school_id", schoolID), zap.Error(te.Err))
	case !isClassified(err):
		lg.Error("unexpected failure", zap.String("op", op), zap.Stringer("school_id", schoolID), zap.Error(err))
	}
	return err
}
