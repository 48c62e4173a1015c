package sqlite_test

import (
	"testing"
	"time"

	"tradeauto/internal/repository"
	"tradeauto/internal/repository/sqlite"
	"tradeauto/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func newTestState(t *testing.T) *sqlite.StateRepository {
	conn, err := sqlx.Connect("sqlite3", ":memory:")
	assert.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	repo := sqlite.NewStateRepository(conn)
	assert.NoError(t, repo.Migrate())

	return repo
}

func TestStateRepository(t *testing.T) {
	t.Run("get missing key", func(t *testing.T) {
		repo := newTestState(t)

		_, _, err := repo.Get("guardrails/symbol/AAPL")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		repo := newTestState(t)

		assert.NoError(t, repo.Put("guardrails/symbol/AAPL", []byte(`{"last_trade_ts":"2024-01-02T15:04:05Z"}`), 0))

		value, updatedAt, err := repo.Get("guardrails/symbol/AAPL")
		assert.NoError(t, err)
		assert.JSONEq(t, `{"last_trade_ts":"2024-01-02T15:04:05Z"}`, string(value))
		assert.WithinDuration(t, time.Now().UTC(), updatedAt, 5*time.Second)
	})

	t.Run("put overwrites", func(t *testing.T) {
		repo := newTestState(t)

		assert.NoError(t, repo.Put("guardrails/daily/2024-01-02", []byte(`{"total":1}`), 0))
		assert.NoError(t, repo.Put("guardrails/daily/2024-01-02", []byte(`{"total":2}`), 0))

		value, _, err := repo.Get("guardrails/daily/2024-01-02")
		assert.NoError(t, err)
		assert.JSONEq(t, `{"total":2}`, string(value))
	})

	t.Run("put if absent claims once", func(t *testing.T) {
		repo := newTestState(t)

		claimed, err := repo.PutIfAbsent("guardrails/debounce/abc", []byte("1"), time.Minute)
		assert.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = repo.PutIfAbsent("guardrails/debounce/abc", []byte("1"), time.Minute)
		assert.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("compare and swap", func(t *testing.T) {
		repo := newTestState(t)

		assert.NoError(t, repo.Put("guardrails/daily/2024-01-02", []byte(`{"total":2}`), time.Hour))

		// A swap against a value another writer already replaced is lost.
		swapped, err := repo.CompareAndSwap("guardrails/daily/2024-01-02", []byte(`{"total":1}`), []byte(`{"total":2}`), time.Hour)
		assert.NoError(t, err)
		assert.False(t, swapped)

		swapped, err = repo.CompareAndSwap("guardrails/daily/2024-01-02", []byte(`{"total":2}`), []byte(`{"total":3}`), time.Hour)
		assert.NoError(t, err)
		assert.True(t, swapped)

		value, _, err := repo.Get("guardrails/daily/2024-01-02")
		assert.NoError(t, err)
		assert.JSONEq(t, `{"total":3}`, string(value))
	})

	t.Run("compare and swap missing key", func(t *testing.T) {
		repo := newTestState(t)

		swapped, err := repo.CompareAndSwap("guardrails/daily/2024-01-02", []byte(`{"total":1}`), []byte(`{"total":2}`), time.Hour)
		assert.NoError(t, err)
		assert.False(t, swapped)
	})

	t.Run("expired key behaves as absent", func(t *testing.T) {
		repo := newTestState(t)

		assert.NoError(t, repo.Put("guardrails/debounce/abc", []byte("1"), 5*time.Millisecond))
		time.Sleep(20 * time.Millisecond)

		_, _, err := repo.Get("guardrails/debounce/abc")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		claimed, err := repo.PutIfAbsent("guardrails/debounce/abc", []byte("1"), time.Minute)
		assert.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("purge expired", func(t *testing.T) {
		repo := newTestState(t)

		assert.NoError(t, repo.Put("a", []byte("1"), 5*time.Millisecond))
		assert.NoError(t, repo.Put("b", []byte("1"), time.Hour))
		assert.NoError(t, repo.Put("c", []byte("1"), 0))

		time.Sleep(20 * time.Millisecond)

		purged, err := repo.PurgeExpired(time.Now())
		assert.NoError(t, err)
		assert.Equal(t, int64(1), purged)

		_, _, err = repo.Get("b")
		assert.NoError(t, err)
		_, _, err = repo.Get("c")
		assert.NoError(t, err)
	})
}

func TestExecLogRepository(t *testing.T) {
	conn, err := sqlx.Connect("sqlite3", ":memory:")
	assert.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	repo := sqlite.NewExecLogRepository(conn)
	assert.NoError(t, repo.Migrate())

	last, err := repo.GetLast("AAPL")
	assert.NoError(t, err)
	assert.Nil(t, last)

	first := &models.ExecutionLog{
		Key:       "webhook-trades/noid-AAPL",
		Timestamp: time.Now().UTC(),
		WebhookData: models.SignalEvent{
			Symbol: "AAPL",
			Action: models.SideBUY,
			Qty:    1,
			Source: "test",
		},
		Outcome: "skipped:debounce",
	}
	assert.NoError(t, repo.Store(first))

	second := &models.ExecutionLog{
		Key:         "webhook-trades/noid-AAPL",
		Timestamp:   time.Now().UTC(),
		WebhookData: first.WebhookData,
		Outcome:     "simulated",
	}
	assert.NoError(t, repo.Store(second))

	last, err = repo.GetLast("AAPL")
	assert.NoError(t, err)
	assert.Equal(t, "simulated", last.Outcome)
}
