package service

import (
	"errors"
	"fmt"
	"strings"

	"go-remedyflow/pkg/validator"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyConfirmed  = errors.New("order already confirmed")
	ErrDuplicateSale     = errors.New("sale already exists for order")
	ErrNameConflict      = errors.New("name already in use")
	ErrReferentialBlock  = errors.New("resource is still referenced")
	ErrUnauthorized      = errors.New("unauthorized")

	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrUserInactive       = fmt.Errorf("%w: user account is inactive", ErrUnauthorized)
	ErrSessionReplaced    = fmt.Errorf("%w: session expired (logged in on another device)", ErrUnauthorized)

	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrPurchaseNotFound = fmt.Errorf("purchase %w", ErrNotFound)
	ErrSaleNotFound     = fmt.Errorf("sale %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
)

// ValidationError carries per-field failures; errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Fields []*validator.ErrorResponse
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(reason string) error { return &ValidationError{Reason: reason} }

// validate runs the struct tags on in.
func validate(in interface{}) error {
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// InsufficientStockError reports the shortfall; errors.Is(err, ErrInsufficientStock) holds.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
