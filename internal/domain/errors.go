package domain

import "errors"

var (
	ErrInvalidRequest = errors.New("checkout: invalid request")

	ErrProductNotFound   = errors.New("catalog: product not found")
	ErrInvalidQuantity   = errors.New("checkout: quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("catalog: product price must be greater than zero")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")

	ErrOrderNotFound  = errors.New("ledger: order not found")
	ErrOrderClosed    = errors.New("ledger: order already failed")
	ErrPaymentNotPaid = errors.New("ledger: payment not paid")

	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrForbidden    = errors.New("auth: forbidden")

	ErrProviderUnavailable = errors.New("provider: unavailable")
	ErrSignatureMismatch   = errors.New("provider: signature mismatch")

	ErrInvalidSnapshot = errors.New("checkout: invalid cart snapshot")
)
