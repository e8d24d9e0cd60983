// Package sqlite3 implements a record store in a SQLite database.
package sqlite3

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
	"github.com/bobg/reportanchor/store"
)

var _ reportanchor.Store = &Store{}

// Store is a Sqlite-based record store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `records` table if it does not exist.
// (If it does exist, it must have the columns and constraints described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS records (
  addr BLOB PRIMARY KEY NOT NULL,
  data BLOB NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create table `records`,
// or for that table already to exist with the correct schema.
// (See variable Schema.)
//
// SQLite admits one writer at a time,
// so callers sharing db among goroutines should limit it to one open connection
// (see sql.DB.SetMaxOpenConns).
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, errors.Wrap(err, "creating schema")
}

// Get gets the record at `addr`.
func (s *Store) Get(ctx context.Context, addr reportanchor.Address) ([]byte, error) {
	const q = `SELECT data FROM records WHERE addr = $1`

	var data []byte
	err := s.db.QueryRowContext(ctx, q, addr).Scan(&data)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, reportanchor.ErrNotFound
	}
	return data, errors.Wrapf(err, "querying record %s", addr)
}

// Create stores a record if the address is not yet occupied.
func (s *Store) Create(ctx context.Context, addr reportanchor.Address, data []byte) (bool, error) {
	const q = `INSERT INTO records (addr, data) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	res, err := s.db.ExecContext(ctx, q, addr, data)
	if err != nil {
		return false, errors.Wrap(err, "inserting record")
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "counting affected rows")
	}
	return aff > 0, nil
}

// ListAddrs produces all occupied addresses in the store, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start reportanchor.Address, f func(reportanchor.Address) error) error {
	const q = `SELECT addr FROM records WHERE addr > $1 ORDER BY addr`
	return sqlutil.ForQueryRows(ctx, s.db, q, start, func(addr reportanchor.Address) error {
		return f(addr)
	})
}

func init() {
	store.Register("sqlite3", func(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("sqlite3", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening db")
		}
		db.SetMaxOpenConns(1)
		return New(ctx, db)
	})
}
