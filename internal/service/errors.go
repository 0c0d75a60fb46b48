package service

import "errors"

var (
	// ErrInvalidAmount means a transaction amount was zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds means the balance cannot cover the operation.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBelowMinimum means an online purchase was under the $50 floor.
	ErrBelowMinimum = errors.New("minimum purchase amount is $50")

	// ErrEmptyPassword means a password change to the empty string.
	ErrEmptyPassword = errors.New("password must not be empty")

	// ErrUnknownRole means a role change to something other than Manager or
	// Customer.
	ErrUnknownRole = errors.New("unknown role")
)
