package repository

import (
	"time"

	"tradeauto/models"

	"github.com/pkg/errors"
)

//go:generate mockery --case=snake --name=StateRepo
//go:generate mockery --case=snake --name=ExecLogRepo

// ErrNotFound is returned by StateRepo.Get for missing or expired keys.
var ErrNotFound = errors.New("state key not found")

// StateRepo is the durable key-value store behind the guardrail engine.
// Values are JSON blobs; ttl <= 0 means no expiry. Rows past their expiry
// behave as absent; the janitor physically removes them via PurgeExpired.
type StateRepo interface {
	Get(key string) ([]byte, time.Time, error)
	Put(key string, value []byte, ttl time.Duration) error
	PutIfAbsent(key string, value []byte, ttl time.Duration) (bool, error)
	CompareAndSwap(key string, expected, value []byte, ttl time.Duration) (bool, error)
	Delete(key string) error
	PurgeExpired(now time.Time) (int64, error)
}

// ExecLogRepo stores write-once execution audit records.
type ExecLogRepo interface {
	Store(log *models.ExecutionLog) error
	GetLast(symbol string) (*models.ExecutionLog, error)
}
