package data

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrEditConflict   = errors.New("edit conflict")
	ErrTxConflict     = errors.New("transaction conflict")
)

type ModelValidationErr struct {
	Errors map[string]string
}

func (e ModelValidationErr) Error() string {
	return "model validation unsuccessful"
}

func NewModelValidationErr(key string, value string) ModelValidationErr {
	return ModelValidationErr{Errors: map[string]string{
		key: value,
	}}
}

func (e ModelValidationErr) AddError(key string, value string) {
	if _, exists := e.Errors[key]; !exists {
		e.Errors[key] = value
	}
}

func (e ModelValidationErr) Valid() bool {
	return len(e.Errors) == 0
}

// Postgres SQLSTATE codes the models react to.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgForeignKeyViolation  = "23503"
)

// classify maps driver errors onto the package's sentinel errors. Anything it does not
// recognize is returned unchanged.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return errors.Join(ErrTxConflict, err)
	case pgForeignKeyViolation:
		return ErrRecordNotFound
	default:
		return err
	}
}
