package service

import "bankaccount/internal/account"

// BuiltinManager materializes the bootstrap manager credential as an ordinary
// record so the manager login goes through Authenticate like any customer.
// The record is never persisted and never appears in the roster; swapping it
// for a stored credential later will not touch any call site.
func BuiltinManager(username, password string) *account.Record {
	return account.New(username, password, account.RoleManager, 0)
}
