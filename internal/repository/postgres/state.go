package postgres

import (
	"database/sql"
	"time"

	"tradeauto/internal/repository"

	"github.com/jmoiron/sqlx"
)

const stateSchema = `
CREATE TABLE IF NOT EXISTS state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NULL
)`

type StateRepository struct {
	conn *sqlx.DB
}

func NewStateRepository(conn *sqlx.DB) *StateRepository {
	return &StateRepository{
		conn: conn,
	}
}

func (r *StateRepository) Migrate() error {
	if _, err := r.conn.Exec(stateSchema); err != nil {
		return err
	}

	return nil
}

func (r *StateRepository) Get(key string) ([]byte, time.Time, error) {
	var row struct {
		Value     string    `db:"value"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	err := r.conn.QueryRowx(
		"SELECT value, updated_at FROM state WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)",
		key, time.Now().UTC(),
	).StructScan(&row)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, repository.ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	return []byte(row.Value), row.UpdatedAt, nil
}

func (r *StateRepository) Put(key string, value []byte, ttl time.Duration) error {
	now := time.Now().UTC()

	_, err := r.conn.Exec(
		`INSERT INTO state (key, value, updated_at, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`,
		key, string(value), now, expiry(now, ttl),
	)

	return err
}

func (r *StateRepository) PutIfAbsent(key string, value []byte, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()

	if _, err := r.conn.Exec(
		"DELETE FROM state WHERE key = $1 AND expires_at IS NOT NULL AND expires_at <= $2",
		key, now,
	); err != nil {
		return false, err
	}

	res, err := r.conn.Exec(
		"INSERT INTO state (key, value, updated_at, expires_at) VALUES ($1, $2, $3, $4) ON CONFLICT (key) DO NOTHING",
		key, string(value), now, expiry(now, ttl),
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// CompareAndSwap replaces the value only when the stored value still
// equals expected. A lost swap means a concurrent writer got there first;
// the caller re-reads and retries.
func (r *StateRepository) CompareAndSwap(key string, expected, value []byte, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()

	res, err := r.conn.Exec(
		`UPDATE state SET value = $1, updated_at = $2, expires_at = $3
		 WHERE key = $4 AND value = $5 AND (expires_at IS NULL OR expires_at > $6)`,
		string(value), now, expiry(now, ttl), key, string(expected), now,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *StateRepository) Delete(key string) error {
	_, err := r.conn.Exec("DELETE FROM state WHERE key = $1", key)

	return err
}

func (r *StateRepository) PurgeExpired(now time.Time) (int64, error) {
	res, err := r.conn.Exec(
		"DELETE FROM state WHERE expires_at IS NOT NULL AND expires_at <= $1",
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func expiry(now time.Time, ttl time.Duration) interface{} {
	if ttl <= 0 {
		return nil
	}

	return now.Add(ttl)
}
