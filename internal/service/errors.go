package service

import (
	"errors"
	"fmt"

	"github.com/bossshopp/internal/repository"
)

// 业务错误
var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrEmailExists         = fmt.Errorf("email already registered: %w", ErrConstraintViolation)
	ErrSKUExists           = fmt.Errorf("sku already exists: %w", ErrConstraintViolation)
	ErrOrderCreationFailed = errors.New("order creation failed")
	ErrOutOfStock          = errors.New("insufficient stock")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrOrderFinalized      = fmt.Errorf("order already in final status: %w", ErrInvalidTransition)
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrProductNotAvailable = errors.New("product not available")
	ErrCartFull            = errors.New("cart item limit reached")
	ErrWeakPassword        = errors.New("password does not meet policy")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAddressNotFound     = errors.New("address not found")
	ErrInvalidPaymentState = errors.New("invalid payment status")
)

// orderCreationError 下单失败，同时匹配 ErrOrderCreationFailed 与具体原因
type orderCreationError struct {
	cause error
}

func (e *orderCreationError) Error() string {
	if e.cause == nil {
		return ErrOrderCreationFailed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrOrderCreationFailed.Error(), e.cause.Error())
}

func (e *orderCreationError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrOrderCreationFailed}
	}
	return []error{ErrOrderCreationFailed, e.cause}
}

func wrapOrderCreation(cause error) error {
	return &orderCreationError{cause: cause}
}

// translateConstraint 将唯一/外键冲突映射为业务错误
func translateConstraint(err error, duplicate error) error {
	if err == nil {
		return nil
	}
	if repository.IsDuplicateKeyError(err) {
		if duplicate != nil {
			return duplicate
		}
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	if repository.IsForeignKeyError(err) {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return err
}
