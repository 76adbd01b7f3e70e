package orders

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrAccessDenied      = errors.New("order belongs to another customer")
	ErrValidation        = errors.New("invalid order input")
	ErrTotalMismatch     = errors.New("total amount does not match item subtotals")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
	ErrNotReturnable     = errors.New("order is not eligible for return")
)
