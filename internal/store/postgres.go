package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"bankaccount/internal/account"
)

// PostgresStore keeps records in a customers table instead of flat files, for
// installations that already run a database. It implements the same Store
// contract as FileStore and the two are interchangeable.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore connects to the database behind dsn and creates the
// customers table if it does not exist.
func NewPostgresStore(dsn string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	if err := createTable(db); err != nil {
		return nil, fmt.Errorf("error creating tables: %w", err)
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

func createTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS customers (
			username VARCHAR(255) PRIMARY KEY,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			balance DOUBLE PRECISION NOT NULL DEFAULT 0,
			CONSTRAINT valid_role CHECK (role IN ('Manager', 'Customer')),
			CONSTRAINT non_negative_balance CHECK (balance >= 0)
		);
	`
	_, err := db.Exec(query)
	return err
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Load(username string) (*account.Record, error) {
	query := `
		SELECT username, password, role, balance
		FROM customers
		WHERE username = $1`

	var rec account.Record
	var role string
	err := s.db.QueryRow(query, username).Scan(&rec.Username, &rec.Password, &role, &rec.Balance)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("loading record %s: %w", username, err)
	}
	rec.Role = account.Role(role)
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &rec, nil
}

func (s *PostgresStore) Save(rec *account.Record) error {
	query := `
		INSERT INTO customers (username, password, role, balance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE
		SET password = EXCLUDED.password,
		    role = EXCLUDED.role,
		    balance = EXCLUDED.balance`

	_, err := s.db.Exec(query, rec.Username, rec.Password, string(rec.Role), rec.Balance)
	if err != nil {
		return fmt.Errorf("saving record %s: %w", rec.Username, err)
	}
	return nil
}

func (s *PostgresStore) Delete(username string) error {
	// DELETE of a missing row affects zero rows, which already matches the
	// contract that deleting an absent record is not an error.
	_, err := s.db.Exec("DELETE FROM customers WHERE username = $1", username)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", username, err)
	}
	return nil
}

func (s *PostgresStore) List() ([]*account.Record, error) {
	rows, err := s.db.Query("SELECT username, password, role, balance FROM customers ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var recs []*account.Record
	for rows.Next() {
		var rec account.Record
		var role string
		if err := rows.Scan(&rec.Username, &rec.Password, &role, &rec.Balance); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Role = account.Role(role)
		if err := rec.Validate(); err != nil {
			s.logger.Warn("skipping invalid record",
				zap.String("entry", rec.Username), zap.Error(err))
			continue
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return recs, nil
}

var _ Store = (*PostgresStore)(nil)
var _ Store = (*FileStore)(nil)
