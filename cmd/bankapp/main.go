// Command bankapp is a terminal front end for the account core: a login
// screen that leads to either the customer menu (balance, deposit, withdraw,
// online purchase, password change) or the manager menu (roster listing,
// customer creation and deletion).
//
// All numeric input is parsed here, before the core is called; the service
// only ever sees validated numbers.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bankaccount/internal/account"
	"bankaccount/internal/config"
	"bankaccount/internal/service"
	"bankaccount/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	st, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("initializing record store", zap.Error(err))
	}

	app := &app{
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
		st:      st,
		svc:     service.New(st, logger),
		manager: service.BuiltinManager(cfg.ManagerUsername, cfg.ManagerPassword),
	}
	app.run()
}

func newStore(cfg config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return store.NewPostgresStore(cfg.DSN(), logger)
	case "file":
		return store.NewFileStore(cfg.DataDir, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

type app struct {
	in      *bufio.Scanner
	out     io.Writer
	st      store.Store
	svc     *service.Service
	manager *account.Record
}

func (a *app) run() {
	for {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "=== Bank Account App ===")
		fmt.Fprintln(a.out, "1) Customer login")
		fmt.Fprintln(a.out, "2) Manager login")
		fmt.Fprintln(a.out, "3) Quit")
		choice, ok := a.prompt("Choice: ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			a.customerLogin()
		case "2":
			a.managerLogin()
		case "3":
			return
		default:
			fmt.Fprintln(a.out, "Unknown choice.")
		}
	}
}

func (a *app) prompt(label string) (string, bool) {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *app) credentials() (username, password string, ok bool) {
	if username, ok = a.prompt("Username: "); !ok {
		return
	}
	password, ok = a.prompt("Password: ")
	return
}

func (a *app) customerLogin() {
	username, password, ok := a.credentials()
	if !ok {
		return
	}
	rec, err := a.st.Load(username)
	if err != nil || !a.svc.Authenticate(rec, username, password, account.RoleCustomer) {
		fmt.Fprintln(a.out, "Invalid username, password or role.")
		return
	}
	a.customerMenu(rec)
}

func (a *app) managerLogin() {
	username, password, ok := a.credentials()
	if !ok {
		return
	}
	if !a.svc.Authenticate(a.manager, username, password, account.RoleManager) {
		fmt.Fprintln(a.out, "Invalid username, password or role.")
		return
	}
	a.managerMenu()
}

func (a *app) customerMenu(rec *account.Record) {
	for {
		fmt.Fprintf(a.out, "\nBalance: $%.2f  Level: %s\n", rec.Balance, rec.Tier())
		fmt.Fprintln(a.out, "1) Deposit")
		fmt.Fprintln(a.out, "2) Withdraw")
		fmt.Fprintln(a.out, "3) Online purchase")
		fmt.Fprintln(a.out, "4) Change password")
		fmt.Fprintln(a.out, "5) Log out")
		choice, ok := a.prompt("Choice: ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			if amount, ok := a.readAmount("Deposit amount: "); ok {
				a.report(a.svc.Deposit(rec, amount))
			}
		case "2":
			if amount, ok := a.readAmount("Withdraw amount: "); ok {
				a.report(a.svc.Withdraw(rec, amount))
			}
		case "3":
			if amount, ok := a.readAmount("Purchase amount: "); ok {
				fee := rec.Tier().Fee()
				if err := a.svc.Purchase(rec, amount); err != nil {
					a.report(err)
				} else {
					fmt.Fprintf(a.out, "Purchase successful (fee $%.2f).\n", fee)
				}
			}
		case "4":
			if password, ok := a.prompt("New password: "); ok {
				a.report(a.svc.ChangePassword(rec, password))
			}
		case "5":
			fmt.Fprintln(a.out, "Logged out.")
			return
		default:
			fmt.Fprintln(a.out, "Unknown choice.")
		}
	}
}

func (a *app) managerMenu() {
	for {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "1) List customers")
		fmt.Fprintln(a.out, "2) Add customer")
		fmt.Fprintln(a.out, "3) Delete customer")
		fmt.Fprintln(a.out, "4) Log out")
		choice, ok := a.prompt("Choice: ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			a.listCustomers()
		case "2":
			a.addCustomer()
		case "3":
			if username, ok := a.prompt("Username to delete: "); ok && username != "" {
				a.report(a.svc.Remove(username))
			}
		case "4":
			fmt.Fprintln(a.out, "Logged out.")
			return
		default:
			fmt.Fprintln(a.out, "Unknown choice.")
		}
	}
}

func (a *app) listCustomers() {
	recs, err := a.st.List()
	if err != nil {
		a.report(err)
		return
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No customers.")
		return
	}
	fmt.Fprintf(a.out, "%-20s %10s  %s\n", "USERNAME", "BALANCE", "LEVEL")
	for _, rec := range recs {
		fmt.Fprintf(a.out, "%-20s %10.2f  %s\n", rec.Username, rec.Balance, rec.Tier())
	}
}

func (a *app) addCustomer() {
	username, password, ok := a.credentials()
	if !ok {
		return
	}
	rec, err := a.svc.Provision(username, password)
	if err != nil {
		a.report(err)
		return
	}
	fmt.Fprintf(a.out, "Customer %s created with balance $%.2f.\n", rec.Username, rec.Balance)
}

func (a *app) readAmount(label string) (float64, bool) {
	text, ok := a.prompt(label)
	if !ok {
		return 0, false
	}
	amount, err := strconv.ParseFloat(text, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Please enter a valid number.")
		return 0, false
	}
	return amount, true
}

func (a *app) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidAmount):
		fmt.Fprintln(a.out, "Amount must be positive.")
	case errors.Is(err, service.ErrInsufficientFunds):
		fmt.Fprintln(a.out, "Insufficient funds.")
	case errors.Is(err, service.ErrBelowMinimum):
		fmt.Fprintln(a.out, "Minimum purchase amount is $50.")
	case errors.Is(err, service.ErrEmptyPassword):
		fmt.Fprintln(a.out, "Password must not be empty.")
	case errors.Is(err, store.ErrExists):
		fmt.Fprintln(a.out, "Customer already exists.")
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(a.out, "Customer not found.")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}
