package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aletheialabs/aletheia/types"
)

const claimSchema = `
CREATE TABLE IF NOT EXISTS claims (
	id           INTEGER PRIMARY KEY,
	submitter    TEXT    NOT NULL,
	verifier_ref TEXT    NOT NULL,
	cert_hash    BLOB    NOT NULL,
	bond         INTEGER NOT NULL,
	deadline_ns  INTEGER NOT NULL,
	finalized    INTEGER NOT NULL DEFAULT 0,
	slashed      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
INSERT OR IGNORE INTO meta (key, value) VALUES ('next_id', 1);
`

// SQLStore is a sqlite-backed store
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens (creating if needed) a sqlite-backed store at path
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open claim database: %w", err)
	}

	// The registry serializes writes itself; one connection avoids
	// SQLITE_BUSY from the driver's default pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(claimSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize claim schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// NextID implements Store
func (s *SQLStore) NextID() (uint64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	if err := tx.QueryRow(`SELECT value FROM meta WHERE key = 'next_id'`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read next id: %w", err)
	}
	if _, err := tx.Exec(`UPDATE meta SET value = value + 1 WHERE key = 'next_id'`); err != nil {
		return 0, fmt.Errorf("failed to advance next id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Put implements Store
func (s *SQLStore) Put(c *types.Claim) error {
	_, err := s.db.Exec(`
		INSERT INTO claims (id, submitter, verifier_ref, cert_hash, bond, deadline_ns, finalized, slashed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			bond = excluded.bond,
			finalized = excluded.finalized,
			slashed = excluded.slashed`,
		int64(c.ID), string(c.Submitter), c.VerifierRef, c.CertHash.Data,
		int64(c.Bond), c.Deadline.UnixNano(), boolToInt(c.Finalized), boolToInt(c.Slashed))
	if err != nil {
		return fmt.Errorf("failed to store claim %d: %w", c.ID, err)
	}

	// Keep the counter ahead of externally assigned ids (journal replay)
	_, err = s.db.Exec(`UPDATE meta SET value = ? WHERE key = 'next_id' AND value <= ?`,
		int64(c.ID)+1, int64(c.ID))
	if err != nil {
		return fmt.Errorf("failed to advance next id: %w", err)
	}
	return nil
}

// Get implements Store
func (s *SQLStore) Get(id uint64) (*types.Claim, error) {
	row := s.db.QueryRow(`
		SELECT id, submitter, verifier_ref, cert_hash, bond, deadline_ns, finalized, slashed
		FROM claims WHERE id = ?`, int64(id))
	c, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load claim %d: %w", id, err)
	}
	return c, nil
}

// List implements Store
func (s *SQLStore) List() ([]*types.Claim, error) {
	rows, err := s.db.Query(`
		SELECT id, submitter, verifier_ref, cert_hash, bond, deadline_ns, finalized, slashed
		FROM claims ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var out []*types.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close implements Store
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*types.Claim, error) {
	var (
		id, bond, deadlineNS int64
		submitter, ref       string
		certHash             []byte
		finalized, slashed   int
	)
	if err := row.Scan(&id, &submitter, &ref, &certHash, &bond, &deadlineNS, &finalized, &slashed); err != nil {
		return nil, err
	}

	hash, err := types.NewHash(certHash)
	if err != nil {
		return nil, fmt.Errorf("claim %d has corrupt cert hash: %w", id, err)
	}
	return &types.Claim{
		ID:          uint64(id),
		Submitter:   types.Address(submitter),
		VerifierRef: ref,
		CertHash:    hash,
		Bond:        uint64(bond),
		Deadline:    time.Unix(0, deadlineNS).UTC(),
		Finalized:   finalized != 0,
		Slashed:     slashed != 0,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLStore)(nil)
