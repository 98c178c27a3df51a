package domain

import (
	"errors"
	"fmt"
)

// Stage names the generation pass an error belongs to.
type Stage string

const (
	StageConfig     Stage = "config"
	StageCategories Stage = "categories"
	StageProducts   Stage = "products"
	StageCustomers  Stage = "customers"
	StageSales      Stage = "sales"
)

var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidRange        = errors.New("invalid range")
)

// ConstraintViolation reports a broken foreign key or an out-of-domain value.
type ConstraintViolation struct {
	Stage     Stage
	Invariant string
	Err       error
}

func (e *ConstraintViolation) Error() string {
	msg := fmt.Sprintf("%s: stage %s: %s", ErrConstraintViolation, e.Stage, e.Invariant)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConstraintViolation) Is(target error) bool { return target == ErrConstraintViolation }

func (e *ConstraintViolation) Unwrap() error { return e.Err }

// InvalidRange reports a bad generation configuration value.
type InvalidRange struct {
	Field  string
	Reason string
}

func (e *InvalidRange) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidRange, e.Field, e.Reason)
}

func (e *InvalidRange) Is(target error) bool { return target == ErrInvalidRange }
