package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bankaccount/internal/account"
)

// FileStore keeps one flat file per username under a root directory. The file
// holds exactly four UTF-8 lines in fixed order: username, password, role,
// balance. No header, no checksum.
type FileStore struct {
	root   string
	logger *zap.Logger
}

// NewFileStore opens a store rooted at dir, creating the directory if it does
// not exist yet. Safe to call repeatedly with the same root.
func NewFileStore(root string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &FileStore{root: root, logger: logger}, nil
}

// Root returns the backing directory.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) path(username string) string {
	return filepath.Join(s.root, username)
}

// Load reads the record for username. Returns ErrNotFound if no entry exists
// and ErrCorrupt if the entry cannot be parsed into a valid record.
func (s *FileStore) Load(username string) (*account.Record, error) {
	f, err := os.Open(s.path(username))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("opening record %s: %w", username, err)
	}
	defer f.Close()
	return decodeRecord(f)
}

func decodeRecord(r io.Reader) (*account.Record, error) {
	lines := make([]string, 0, 4)
	sc := bufio.NewScanner(r)
	for len(lines) < 4 && sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	if len(lines) < 4 {
		return nil, fmt.Errorf("%w: expected 4 lines, got %d", ErrCorrupt, len(lines))
	}
	balance, err := strconv.ParseFloat(strings.TrimSpace(lines[3]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad balance %q", ErrCorrupt, lines[3])
	}
	rec := &account.Record{
		Username: lines[0],
		Password: lines[1],
		Role:     account.Role(lines[2]),
		Balance:  balance,
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return rec, nil
}

// Save writes the record, replacing any existing entry for the username. The
// write goes to a temporary file in the same directory which is then renamed
// over the entry, so a failed write never truncates the previous state.
func (s *FileStore) Save(rec *account.Record) error {
	tmp, err := os.CreateTemp(s.root, ".save-*")
	if err != nil {
		return fmt.Errorf("creating temp entry: %w", err)
	}
	_, err = fmt.Fprintf(tmp, "%s\n%s\n%s\n%s\n",
		rec.Username, rec.Password, rec.Role,
		strconv.FormatFloat(rec.Balance, 'g', -1, 64))
	if err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing record %s: %w", rec.Username, err)
	}
	if err := os.Rename(tmp.Name(), s.path(rec.Username)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing record %s: %w", rec.Username, err)
	}
	return nil
}

// Delete removes the entry for username. Deleting a missing entry is not an
// error.
func (s *FileStore) Delete(username string) error {
	err := os.Remove(s.path(username))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// List loads every record in the root directory. Entries that fail to load
// are logged and skipped rather than aborting the whole enumeration.
func (s *FileStore) List() ([]*account.Record, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading store root: %w", err)
	}
	recs := make([]*account.Record, 0, len(entries))
	for _, e := range entries {
		// Dotfiles include temp entries left by an interrupted Save.
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		rec, err := s.Load(e.Name())
		if err != nil {
			s.logger.Warn("skipping unreadable record",
				zap.String("entry", e.Name()), zap.Error(err))
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
