package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bankaccount/internal/account"
	"bankaccount/internal/store"
	"bankaccount/internal/tier"
)

func newTestService(t *testing.T) (*Service, *store.FileStore) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return New(st, zap.NewNop()), st
}

// reload fetches the persisted state, bypassing whatever the caller holds in
// memory.
func reload(t *testing.T, st *store.FileStore, username string) *account.Record {
	t.Helper()
	rec, err := st.Load(username)
	require.NoError(t, err)
	return rec
}

func TestProvision(t *testing.T) {
	svc, st := newTestService(t)

	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Username)
	assert.Equal(t, account.RoleCustomer, rec.Role)
	assert.Equal(t, InitialBalance, rec.Balance)

	// The record is durable immediately.
	assert.Equal(t, rec, reload(t, st, "alice"))
}

func TestProvisionDuplicate(t *testing.T) {
	svc, st := newTestService(t)

	first, err := svc.Provision("alice", "pw")
	require.NoError(t, err)
	require.NoError(t, svc.Deposit(first, 400))

	// Re-provisioning is reported, and the existing record keeps its state.
	_, err = svc.Provision("alice", "other")
	assert.ErrorIs(t, err, store.ErrExists)
	assert.Equal(t, 500.0, reload(t, st, "alice").Balance)
}

func TestProvisionRejectsEmptyCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Provision("", "pw")
	assert.Error(t, err)
	_, err = svc.Provision("alice", "")
	assert.Error(t, err)
}

// Final balance equals initial plus deposits minus withdrawals, the tier
// matches the balance after every step, and storage never lags memory.
func TestDepositWithdrawLedger(t *testing.T) {
	svc, st := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)

	steps := []struct {
		deposit  bool
		amount   float64
		expected float64
	}{
		{true, 9899.0, 9999.0},
		{true, 1.0, 10000.0},
		{true, 15000.0, 25000.0},
		{false, 6000.0, 19000.0},
		{false, 18900.0, 100.0},
	}

	for _, step := range steps {
		if step.deposit {
			require.NoError(t, svc.Deposit(rec, step.amount))
		} else {
			require.NoError(t, svc.Withdraw(rec, step.amount))
		}
		assert.Equal(t, step.expected, rec.Balance)
		assert.Equal(t, tier.ForBalance(step.expected), rec.Tier())
		assert.Equal(t, step.expected, reload(t, st, "alice").Balance)
	}
}

func TestDepositCrossesTierBoundary(t *testing.T) {
	svc, _ := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)
	require.NoError(t, svc.Deposit(rec, 9899.0))

	require.Equal(t, 9999.0, rec.Balance)
	require.Equal(t, tier.Silver, rec.Tier())

	require.NoError(t, svc.Deposit(rec, 1.0))
	assert.Equal(t, 10000.0, rec.Balance)
	assert.Equal(t, tier.Gold, rec.Tier())
	assert.Equal(t, 10.0, rec.Tier().Fee())
}

func TestDepositInvalidAmount(t *testing.T) {
	svc, st := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)

	for _, amount := range []float64{0, -5} {
		err := svc.Deposit(rec, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.Equal(t, InitialBalance, rec.Balance)
	assert.Equal(t, InitialBalance, reload(t, st, "alice").Balance)
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	svc, st := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)
	require.NoError(t, svc.Withdraw(rec, 40)) // balance 60

	before, err := os.ReadFile(filepath.Join(st.Root(), "alice"))
	require.NoError(t, err)

	err = svc.Withdraw(rec, 100)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 60.0, rec.Balance)

	// The backing entry must be byte-for-byte unchanged by the rejection.
	after, err := os.ReadFile(filepath.Join(st.Root(), "alice"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWithdrawInvalidAmount(t *testing.T) {
	svc, _ := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)

	for _, amount := range []float64{0, -1} {
		assert.ErrorIs(t, svc.Withdraw(rec, amount), ErrInvalidAmount)
	}
	assert.Equal(t, InitialBalance, rec.Balance)
}

func TestPurchaseBelowMinimum(t *testing.T) {
	svc, _ := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)
	require.NoError(t, svc.Deposit(rec, 100000))

	// Rejected regardless of balance.
	assert.ErrorIs(t, svc.Purchase(rec, 40.0), ErrBelowMinimum)
	assert.ErrorIs(t, svc.Purchase(rec, 49.99), ErrBelowMinimum)
	assert.Equal(t, 100100.0, rec.Balance)
}

func TestPurchaseFees(t *testing.T) {
	tests := []struct {
		name        string
		balance     float64
		amount      float64
		wantBalance float64
	}{
		// Silver pays 25 on top.
		{"silver fee", 1000.0, 100.0, 875.0},
		// Gold pays 10 on top.
		{"gold fee", 15000.0, 500.0, 14490.0},
		// Platinum pays nothing: total deduction is the amount itself.
		{"platinum no fee", 20000.0, 50.0, 19950.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st := newTestService(t)
			rec, err := svc.Provision("alice", "pw")
			require.NoError(t, err)
			require.NoError(t, svc.Deposit(rec, tt.balance-InitialBalance))

			require.NoError(t, svc.Purchase(rec, tt.amount))
			assert.Equal(t, tt.wantBalance, rec.Balance)
			assert.Equal(t, tt.wantBalance, reload(t, st, "alice").Balance)
		})
	}
}

// The fee bracket is fixed by the balance before the deduction, even when the
// purchase drops the account into a lower tier.
func TestPurchaseFeeBracketBeforeDeduction(t *testing.T) {
	svc, _ := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)
	require.NoError(t, svc.Deposit(rec, 9920)) // balance 10020, Gold

	require.NoError(t, svc.Purchase(rec, 10000.0))
	// Gold fee 10 applied, not the Silver fee of the post-purchase balance.
	assert.Equal(t, 10.0, rec.Balance)
	assert.Equal(t, tier.Silver, rec.Tier())
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	svc, _ := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)

	// Balance 100, Silver: 80 + 25 fee exceeds it.
	assert.ErrorIs(t, svc.Purchase(rec, 80.0), ErrInsufficientFunds)
	assert.Equal(t, InitialBalance, rec.Balance)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)

	assert.True(t, svc.Authenticate(rec, "alice", "pw", account.RoleCustomer))
	assert.False(t, svc.Authenticate(rec, "alice", "wrong", account.RoleCustomer))
	assert.False(t, svc.Authenticate(rec, "bob", "pw", account.RoleCustomer))
	assert.False(t, svc.Authenticate(rec, "alice", "pw", account.RoleManager))
}

func TestBuiltinManagerLogin(t *testing.T) {
	svc, _ := newTestService(t)
	mgr := BuiltinManager("admin", "admin")

	assert.True(t, svc.Authenticate(mgr, "admin", "admin", account.RoleManager))
	assert.False(t, svc.Authenticate(mgr, "admin", "admin", account.RoleCustomer))
	assert.False(t, svc.Authenticate(mgr, "admin", "nope", account.RoleManager))
}

func TestRemove(t *testing.T) {
	svc, st := newTestService(t)
	_, err := svc.Provision("alice", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Remove("alice"))
	_, err = st.Load("alice")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Removing an unknown customer is not an error.
	assert.NoError(t, svc.Remove("alice"))
}

func TestChangePassword(t *testing.T) {
	svc, st := newTestService(t)
	rec, err := svc.Provision("alice", "old")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(rec, "new"))
	loaded := reload(t, st, "alice")
	assert.Equal(t, "new", loaded.Password)
	assert.True(t, svc.Authenticate(loaded, "alice", "new", account.RoleCustomer))

	assert.ErrorIs(t, svc.ChangePassword(rec, ""), ErrEmptyPassword)
	assert.Equal(t, "new", rec.Password)
}

func TestChangeRole(t *testing.T) {
	svc, st := newTestService(t)
	rec, err := svc.Provision("alice", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.ChangeRole(rec, account.RoleManager))
	assert.Equal(t, account.RoleManager, reload(t, st, "alice").Role)

	assert.ErrorIs(t, svc.ChangeRole(rec, "Admin"), ErrUnknownRole)
	assert.Equal(t, account.RoleManager, rec.Role)
}

// A store failure must roll the in-memory record back so it never diverges
// from what is persisted.
func TestMutationRollsBackOnStoreFailure(t *testing.T) {
	st := &failingStore{}
	svc := New(st, zap.NewNop())
	rec := account.New("alice", "pw", account.RoleCustomer, 100)

	assert.Error(t, svc.Deposit(rec, 50))
	assert.Equal(t, 100.0, rec.Balance)

	assert.Error(t, svc.Withdraw(rec, 50))
	assert.Equal(t, 100.0, rec.Balance)

	assert.Error(t, svc.ChangePassword(rec, "new"))
	assert.Equal(t, "pw", rec.Password)
}

type failingStore struct{}

func (f *failingStore) Load(username string) (*account.Record, error) {
	return nil, store.ErrNotFound
}

func (f *failingStore) Save(rec *account.Record) error {
	return assert.AnError
}

func (f *failingStore) Delete(username string) error { return nil }

func (f *failingStore) List() ([]*account.Record, error) { return nil, nil }
