// Package service implements the account operations: deposit, withdraw,
// online purchase, authentication and roster management. Every mutating
// operation validates its input first, applies the change in memory, then
// writes through to the store before returning. A store failure rolls the
// in-memory change back, so callers never observe a record that diverges from
// storage.
package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bankaccount/internal/account"
	"bankaccount/internal/store"
)

// InitialBalance is the opening balance of a freshly provisioned customer.
const InitialBalance = 100.0

// MinimumPurchase is the floor for online purchases regardless of tier.
const MinimumPurchase = 50.0

type Service struct {
	store  store.Store
	logger *zap.Logger
}

func New(st store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// setBalance persists a balance change, rolling back the record on failure.
func (s *Service) setBalance(rec *account.Record, balance float64, op string) error {
	prev := rec.Balance
	rec.Balance = balance
	if err := s.store.Save(rec); err != nil {
		rec.Balance = prev
		return fmt.Errorf("persisting %s: %w", op, err)
	}
	s.logger.Info(op,
		zap.String("username", rec.Username),
		zap.Float64("balance", rec.Balance),
		zap.Stringer("tier", rec.Tier()))
	return nil
}

// Deposit adds amount to the balance. The amount must be positive.
func (s *Service) Deposit(rec *account.Record, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.setBalance(rec, rec.Balance+amount, "deposit")
}

// Withdraw removes amount from the balance. The amount must be positive and
// no greater than the current balance.
func (s *Service) Withdraw(rec *account.Record, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > rec.Balance {
		return ErrInsufficientFunds
	}
	return s.setBalance(rec, rec.Balance-amount, "withdraw")
}

// Purchase performs an online purchase of amount plus the tier fee. The fee
// bracket comes from the balance at purchase time, before the deduction.
func (s *Service) Purchase(rec *account.Record, amount float64) error {
	if amount < MinimumPurchase {
		return ErrBelowMinimum
	}
	fee := rec.Tier().Fee()
	total := amount + fee
	if rec.Balance < total {
		return ErrInsufficientFunds
	}
	return s.setBalance(rec, rec.Balance-total, "purchase")
}

// Authenticate compares the supplied credentials against the record. No
// mutation, no persistence.
func (s *Service) Authenticate(rec *account.Record, username, password string, role account.Role) bool {
	return rec.Username == username && rec.Password == password && rec.Role == role
}

// Provision creates a new customer with the opening balance and persists it.
// Returns store.ErrExists if a record for the username is already present;
// the existing record is left untouched.
func (s *Service) Provision(username, password string) (*account.Record, error) {
	switch _, err := s.store.Load(username); {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", store.ErrExists, username)
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	rec := account.New(username, password, account.RoleCustomer, InitialBalance)
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Save(rec); err != nil {
		return nil, fmt.Errorf("persisting new customer: %w", err)
	}
	s.logger.Info("provisioned customer", zap.String("username", username))
	return rec, nil
}

// Remove deletes the customer's record. Removing an unknown username is not
// an error.
func (s *Service) Remove(username string) error {
	if err := s.store.Delete(username); err != nil {
		return err
	}
	s.logger.Info("removed customer", zap.String("username", username))
	return nil
}

// ChangePassword updates the password and persists the record.
func (s *Service) ChangePassword(rec *account.Record, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	prev := rec.Password
	rec.SetPassword(password)
	if err := s.store.Save(rec); err != nil {
		rec.SetPassword(prev)
		return fmt.Errorf("persisting password change: %w", err)
	}
	s.logger.Info("password changed", zap.String("username", rec.Username))
	return nil
}

// ChangeRole updates the role and persists the record.
func (s *Service) ChangeRole(rec *account.Record, role account.Role) error {
	if role != account.RoleManager && role != account.RoleCustomer {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	prev := rec.Role
	rec.SetRole(role)
	if err := s.store.Save(rec); err != nil {
		rec.SetRole(prev)
		return fmt.Errorf("persisting role change: %w", err)
	}
	s.logger.Info("role changed",
		zap.String("username", rec.Username), zap.String("role", string(role)))
	return nil
}
