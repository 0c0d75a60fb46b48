package account

import (
	"errors"
	"fmt"

	"bankaccount/internal/tier"
)

// Role is the login role attached to a record.
type Role string

const (
	RoleManager  Role = "Manager"
	RoleCustomer Role = "Customer"
)

// Record is the durable state of one customer: login credentials, role and
// balance. The service tier is not part of the record; it is recomputed from
// the balance on demand.
type Record struct {
	Username string
	Password string
	Role     Role
	Balance  float64
}

// New builds a record for provisioning. Loading existing records is the
// store's job.
func New(username, password string, role Role, balance float64) *Record {
	return &Record{
		Username: username,
		Password: password,
		Role:     role,
		Balance:  balance,
	}
}

// Tier returns the service level for the current balance.
func (r *Record) Tier() tier.Tier {
	return tier.ForBalance(r.Balance)
}

// SetPassword changes the password in memory only. Persisting the change is
// the caller's responsibility.
func (r *Record) SetPassword(password string) {
	r.Password = password
}

// SetRole changes the role in memory only. Persisting the change is the
// caller's responsibility.
func (r *Record) SetRole(role Role) {
	r.Role = role
}

// Validate checks the structural invariants every record must satisfy. Run it
// after any deserialization before trusting the fields.
func (r *Record) Validate() error {
	if r.Username == "" {
		return errors.New("username is empty")
	}
	if r.Password == "" {
		return errors.New("password is empty")
	}
	if r.Role != RoleManager && r.Role != RoleCustomer {
		return fmt.Errorf("unknown role %q", r.Role)
	}
	if r.Balance < 0 {
		return fmt.Errorf("negative balance %v", r.Balance)
	}
	return nil
}

func (r *Record) String() string {
	return fmt.Sprintf("Record[username=%s, role=%s, balance=%v, tier=%s]",
		r.Username, r.Role, r.Balance, r.Tier())
}
