package usecasees

import (
	"encoding/json"
	"testing"
	"time"

	"tradeauto/internal/repository"
	"tradeauto/internal/repository/mocks"
	"tradeauto/internal/repository/sqlite"
	"tradeauto/internal/usecasees/structs"
	"tradeauto/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSignal(symbol string) *models.SignalEvent {
	return &models.SignalEvent{
		Symbol:     symbol,
		Action:     models.SideBUY,
		Qty:        1,
		Source:     "webhook",
		Timestamp:  time.Now().UTC(),
		Confidence: 1,
	}
}

func testGuardrailCfg() GuardrailConfig {
	return GuardrailConfig{
		DebounceSeconds:    60,
		MinIntervalSeconds: 300,
		MaxTradesPerDay:    3,
	}
}

func todayKey() string {
	return dailyKeyPrefix + time.Now().UTC().Format("2006-01-02")
}

func Test_GuardrailCheck_FirstEventAdmitted(t *testing.T) {
	repo := &mocks.StateRepo{}
	repo.On("Get", mock.Anything).Return(nil, time.Time{}, repository.ErrNotFound)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	decision := u.Check(testSignal("AAPL"))
	assert.True(t, decision.Allowed)
}

func Test_GuardrailCheck_DuplicateWithinWindow(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")

	repo.On("Get", debounceKeyPrefix+event.Hash()).
		Return([]byte("1"), time.Now().UTC().Add(-10*time.Second), nil)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	decision := u.Check(event)
	assert.False(t, decision.Allowed)
	assert.Equal(t, structs.ReasonDebounce, decision.Reason)
}

func Test_GuardrailCheck_StaleMarkerAdmitted(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")

	repo.On("Get", debounceKeyPrefix+event.Hash()).
		Return([]byte("1"), time.Now().UTC().Add(-2*time.Minute), nil)
	repo.On("Get", mock.Anything).Return(nil, time.Time{}, repository.ErrNotFound)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	decision := u.Check(event)
	assert.True(t, decision.Allowed)
}

func Test_GuardrailCheck_SymbolInterval(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")

	state, err := json.Marshal(models.SymbolState{LastTradeTS: time.Now().UTC().Add(-time.Minute)})
	require.NoError(t, err)

	repo.On("Get", symbolKeyPrefix+"AAPL").Return(state, time.Now().UTC(), nil)
	repo.On("Get", mock.Anything).Return(nil, time.Time{}, repository.ErrNotFound)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	decision := u.Check(event)
	assert.False(t, decision.Allowed)
	assert.Equal(t, structs.ReasonSymbolInterval, decision.Reason)

	// A different symbol is not throttled by AAPL's cooldown.
	decision = u.Check(testSignal("MSFT"))
	assert.True(t, decision.Allowed)
}

func Test_GuardrailCheck_SymbolIntervalElapsed(t *testing.T) {
	repo := &mocks.StateRepo{}

	state, err := json.Marshal(models.SymbolState{LastTradeTS: time.Now().UTC().Add(-10 * time.Minute)})
	require.NoError(t, err)

	repo.On("Get", symbolKeyPrefix+"AAPL").Return(state, time.Now().UTC(), nil)
	repo.On("Get", mock.Anything).Return(nil, time.Time{}, repository.ErrNotFound)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	assert.True(t, u.Check(testSignal("AAPL")).Allowed)
}

func Test_GuardrailCheck_DailyCap(t *testing.T) {
	repo := &mocks.StateRepo{}

	counter, err := json.Marshal(models.DailyCounter{Total: 3})
	require.NoError(t, err)

	repo.On("Get", todayKey()).Return(counter, time.Now().UTC(), nil)
	repo.On("Get", mock.Anything).Return(nil, time.Time{}, repository.ErrNotFound)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	decision := u.Check(testSignal("AAPL"))
	assert.False(t, decision.Allowed)
	assert.Equal(t, structs.ReasonDailyCap, decision.Reason)
}

func Test_GuardrailCheck_DailyCapBelowLimit(t *testing.T) {
	repo := &mocks.StateRepo{}

	counter, err := json.Marshal(models.DailyCounter{Total: 2})
	require.NoError(t, err)

	repo.On("Get", todayKey()).Return(counter, time.Now().UTC(), nil)
	repo.On("Get", mock.Anything).Return(nil, time.Time{}, repository.ErrNotFound)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	assert.True(t, u.Check(testSignal("AAPL")).Allowed)
}

func Test_GuardrailCheck_PerSymbolCapScope(t *testing.T) {
	repo := &mocks.StateRepo{}

	counter, err := json.Marshal(models.DailyCounter{Total: 3})
	require.NoError(t, err)

	repo.On("Get", todayKey()+"/AAPL").Return(counter, time.Now().UTC(), nil)
	repo.On("Get", mock.Anything).Return(nil, time.Time{}, repository.ErrNotFound)

	cfg := testGuardrailCfg()
	cfg.DailyCapPerSymbol = true

	u := NewGuardrailUseCase(repo, cfg, logrus.New())

	decision := u.Check(testSignal("AAPL"))
	assert.False(t, decision.Allowed)
	assert.Equal(t, structs.ReasonDailyCap, decision.Reason)

	// The cap is per symbol; another symbol still trades.
	assert.True(t, u.Check(testSignal("MSFT")).Allowed)
}

func Test_GuardrailCheck_StoreDownFailClosed(t *testing.T) {
	repo := &mocks.StateRepo{}
	repo.On("Get", mock.Anything).Return(nil, time.Time{}, errors.New("connection refused"))

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	decision := u.Check(testSignal("AAPL"))
	assert.False(t, decision.Allowed)
	assert.Equal(t, structs.ReasonStateUnavailable, decision.Reason)
}

func Test_GuardrailCheck_StoreDownFailOpen(t *testing.T) {
	repo := &mocks.StateRepo{}
	repo.On("Get", mock.Anything).Return(nil, time.Time{}, errors.New("connection refused"))

	cfg := testGuardrailCfg()
	cfg.FailOpen = true

	u := NewGuardrailUseCase(repo, cfg, logrus.New())

	assert.True(t, u.Check(testSignal("AAPL")).Allowed)
}

func Test_GuardrailReserve_Claimed(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")

	repo.On("PutIfAbsent", debounceKeyPrefix+event.Hash(), []byte("1"), time.Minute).
		Return(true, nil)
	repo.On("PutIfAbsent", symbolKeyPrefix+"AAPL", mock.Anything, 5*time.Minute).
		Return(true, nil)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	claimed, err := u.Reserve(event)
	require.NoError(t, err)
	assert.True(t, claimed)
	repo.AssertExpectations(t)
}

func Test_GuardrailReserve_LostToConcurrentDuplicate(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")
	key := debounceKeyPrefix + event.Hash()

	repo.On("PutIfAbsent", key, []byte("1"), time.Minute).Return(false, nil)
	repo.On("Get", key).Return([]byte("1"), time.Now().UTC(), nil)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	claimed, err := u.Reserve(event)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func Test_GuardrailReserve_TakesOverStaleMarker(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")
	key := debounceKeyPrefix + event.Hash()

	repo.On("PutIfAbsent", key, []byte("1"), time.Minute).Return(false, nil)
	repo.On("Get", key).Return([]byte("1"), time.Now().UTC().Add(-5*time.Minute), nil)
	repo.On("Put", key, []byte("1"), time.Minute).Return(nil)
	repo.On("PutIfAbsent", symbolKeyPrefix+"AAPL", mock.Anything, 5*time.Minute).
		Return(true, nil)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	claimed, err := u.Reserve(event)
	require.NoError(t, err)
	assert.True(t, claimed)
	repo.AssertExpectations(t)
}

func Test_GuardrailReserve_DistinctSignalSameSymbolLoses(t *testing.T) {
	repo := &mocks.StateRepo{}

	// A SELL while a BUY for the same symbol is mid-flight: the hashes
	// differ, so the debounce claim succeeds, but the cooldown record the
	// BUY just claimed is fresh and the SELL must lose it.
	sell := testSignal("AAPL")
	sell.Action = models.SideSELL

	repo.On("PutIfAbsent", debounceKeyPrefix+sell.Hash(), []byte("1"), time.Minute).
		Return(true, nil)
	repo.On("PutIfAbsent", symbolKeyPrefix+"AAPL", mock.Anything, 5*time.Minute).
		Return(false, nil)
	repo.On("Get", symbolKeyPrefix+"AAPL").
		Return([]byte("{}"), time.Now().UTC(), nil)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	claimed, err := u.Reserve(sell)
	require.NoError(t, err)
	assert.False(t, claimed)
	repo.AssertNotCalled(t, "Put", symbolKeyPrefix+"AAPL", mock.Anything, mock.Anything)
}

func Test_GuardrailReserve_InterleavedDistinctSignals(t *testing.T) {
	conn, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	repo := sqlite.NewStateRepository(conn)
	require.NoError(t, repo.Migrate())

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	buy := testSignal("AAPL")
	sell := testSignal("AAPL")
	sell.Action = models.SideSELL

	require.True(t, u.Check(buy).Allowed)
	claimed, err := u.Reserve(buy)
	require.NoError(t, err)
	require.True(t, claimed)

	// The SELL lands while the BUY holds its reservation but has not yet
	// recorded. At most one of the two may trade: either the cooldown
	// claim already turns the SELL away at Check, or Reserve refuses it.
	if u.Check(sell).Allowed {
		claimed, err = u.Reserve(sell)
		require.NoError(t, err)
		assert.False(t, claimed)
	}

	require.NoError(t, u.Record(buy))
}

func Test_GuardrailReserve_TakesOverElapsedCooldown(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")

	// The cooldown record from the last trade is past the interval; it is
	// not a live claim and the reservation takes it over.
	repo.On("PutIfAbsent", debounceKeyPrefix+event.Hash(), []byte("1"), time.Minute).
		Return(true, nil)
	repo.On("PutIfAbsent", symbolKeyPrefix+"AAPL", mock.Anything, 5*time.Minute).
		Return(false, nil)
	repo.On("Get", symbolKeyPrefix+"AAPL").
		Return([]byte("{}"), time.Now().UTC().Add(-10*time.Minute), nil)
	repo.On("Put", symbolKeyPrefix+"AAPL", mock.Anything, 5*time.Minute).Return(nil)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	claimed, err := u.Reserve(event)
	require.NoError(t, err)
	assert.True(t, claimed)
	repo.AssertExpectations(t)
}

func counterBytes(t *testing.T, total int) []byte {
	t.Helper()

	value, err := json.Marshal(models.DailyCounter{Total: total})
	require.NoError(t, err)

	return value
}

func Test_GuardrailRecord(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")
	prev := counterBytes(t, 2)

	repo.On("Put", symbolKeyPrefix+"AAPL", mock.Anything, time.Duration(0)).Return(nil)
	repo.On("Get", todayKey()).Return(prev, time.Now().UTC(), nil)
	repo.On("CompareAndSwap", todayKey(), prev, mock.MatchedBy(func(value []byte) bool {
		var counter models.DailyCounter
		if err := json.Unmarshal(value, &counter); err != nil {
			return false
		}

		return counter.Total == 3
	}), dailyCounterTTL).Return(true, nil)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	require.NoError(t, u.Record(event))
	repo.AssertExpectations(t)
}

func Test_GuardrailRecord_FirstTradeOfDay(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")

	repo.On("Put", symbolKeyPrefix+"AAPL", mock.Anything, time.Duration(0)).Return(nil)
	repo.On("Get", todayKey()).Return(nil, time.Time{}, repository.ErrNotFound)
	repo.On("PutIfAbsent", todayKey(), counterBytes(t, 1), dailyCounterTTL).Return(true, nil)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	require.NoError(t, u.Record(event))
	repo.AssertExpectations(t)
}

func Test_GuardrailRecord_CounterSwapRetries(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")

	// A concurrent admission moves the counter between the read and the
	// swap; the increment re-reads and lands on top of it instead of
	// overwriting it.
	repo.On("Put", symbolKeyPrefix+"AAPL", mock.Anything, time.Duration(0)).Return(nil)
	repo.On("Get", todayKey()).Return(counterBytes(t, 2), time.Now().UTC(), nil).Once()
	repo.On("CompareAndSwap", todayKey(), counterBytes(t, 2), counterBytes(t, 3), dailyCounterTTL).
		Return(false, nil).Once()
	repo.On("Get", todayKey()).Return(counterBytes(t, 3), time.Now().UTC(), nil).Once()
	repo.On("CompareAndSwap", todayKey(), counterBytes(t, 3), counterBytes(t, 4), dailyCounterTTL).
		Return(true, nil).Once()

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	require.NoError(t, u.Record(event))
	repo.AssertExpectations(t)
}

func Test_GuardrailRecord_CounterContentionExhausted(t *testing.T) {
	repo := &mocks.StateRepo{}
	event := testSignal("AAPL")

	repo.On("Put", symbolKeyPrefix+"AAPL", mock.Anything, time.Duration(0)).Return(nil)
	repo.On("Get", todayKey()).Return(counterBytes(t, 2), time.Now().UTC(), nil)
	repo.On("CompareAndSwap", todayKey(), mock.Anything, mock.Anything, dailyCounterTTL).
		Return(false, nil)

	u := NewGuardrailUseCase(repo, testGuardrailCfg(), logrus.New())

	err := u.Record(event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contention")
}
