package usecasees

import (
	"encoding/json"
	"fmt"
	"time"

	"tradeauto/internal/repository"
	"tradeauto/internal/usecasees/structs"
	"tradeauto/models"

	"github.com/sirupsen/logrus"
)

const (
	debounceKeyPrefix = "guardrails/debounce/"
	symbolKeyPrefix   = "guardrails/symbol/"
	dailyKeyPrefix    = "guardrails/daily/"

	dailyCounterTTL = 48 * time.Hour

	counterSwapAttempts = 5
)

// GuardrailConfig carries the admission policy knobs.
type GuardrailConfig struct {
	DebounceSeconds    int
	MinIntervalSeconds int
	MaxTradesPerDay    int
	DailyCapPerSymbol  bool

	// FailOpen selects the behavior when the state store is unreachable:
	// true treats missing state as "no prior trade", false rejects the
	// event. Default is fail closed; a duplicate order costs more than a
	// missed one.
	FailOpen bool
}

type guardrailUseCase struct {
	stateRepo repository.StateRepo
	cfg       GuardrailConfig
	logger    *logrus.Logger
}

func NewGuardrailUseCase(
	stateRepo repository.StateRepo,
	cfg GuardrailConfig,
	logger *logrus.Logger,
) *guardrailUseCase {
	return &guardrailUseCase{
		stateRepo: stateRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

// Check runs the admission checks in order, short-circuiting on the first
// failure: debounce, per-symbol cooldown, daily cap. It is read-only;
// admission is consumed later via Reserve and Record so a caller can still
// back out (e.g. on insufficient buying power) without burning a slot.
func (u *guardrailUseCase) Check(event *models.SignalEvent) structs.Decision {
	now := time.Now().UTC()

	if d := u.checkDebounce(event, now); !d.Allowed {
		return d
	}

	if d := u.checkSymbolInterval(event, now); !d.Allowed {
		return d
	}

	if d := u.checkDailyCap(event, now); !d.Allowed {
		return d
	}

	return structs.Admitted()
}

// Reserve claims the debounce slot and the per-symbol cooldown with
// conditional writes, closing the window between two near-simultaneous
// deliveries. Two distinct signals for the same symbol hash to different
// debounce keys, so the cooldown claim is what serializes them: exactly
// one caller gets true, the loser skips instead of trading inside the
// interval.
func (u *guardrailUseCase) Reserve(event *models.SignalEvent) (bool, error) {
	claimed, err := u.claim(debounceKeyPrefix+event.Hash(), []byte("1"), u.debounceWindow())
	if err != nil || !claimed {
		return claimed, err
	}

	if u.cfg.MinIntervalSeconds <= 0 {
		return true, nil
	}

	symState, err := json.Marshal(models.SymbolState{LastTradeTS: time.Now().UTC()})
	if err != nil {
		return false, err
	}

	return u.claim(symbolKeyPrefix+event.Symbol, symState, u.minInterval())
}

// claim writes the key conditionally. A marker older than the window is
// a stale leftover, not a live claim; it gets taken over.
func (u *guardrailUseCase) claim(key string, value []byte, window time.Duration) (bool, error) {
	claimed, err := u.stateRepo.PutIfAbsent(key, value, window)
	if err != nil {
		return false, err
	}

	if claimed {
		return true, nil
	}

	_, updatedAt, err := u.stateRepo.Get(key)
	if err == repository.ErrNotFound {
		return u.stateRepo.PutIfAbsent(key, value, window)
	}
	if err != nil {
		return false, err
	}

	if time.Now().UTC().Sub(updatedAt) < window {
		return false, nil
	}

	if err := u.stateRepo.Put(key, value, window); err != nil {
		return false, err
	}

	return true, nil
}

// Record persists the admission: refresh the per-symbol cooldown timestamp
// and increment the daily counter. Called only once a definitive attempt
// (real or simulated) was made.
func (u *guardrailUseCase) Record(event *models.SignalEvent) error {
	now := time.Now().UTC()

	symState, err := json.Marshal(models.SymbolState{LastTradeTS: now})
	if err != nil {
		return err
	}

	if err := u.stateRepo.Put(symbolKeyPrefix+event.Symbol, symState, 0); err != nil {
		return err
	}

	return u.incrementDailyCounter(u.dailyKey(event, now))
}

// incrementDailyCounter bumps the counter with conditional writes so
// concurrent admissions for different symbols cannot lose an increment
// and sneak past the cap.
func (u *guardrailUseCase) incrementDailyCounter(key string) error {
	first, err := json.Marshal(models.DailyCounter{Total: 1})
	if err != nil {
		return err
	}

	for attempt := 0; attempt < counterSwapAttempts; attempt++ {
		prev, _, err := u.stateRepo.Get(key)
		if err == repository.ErrNotFound {
			created, err := u.stateRepo.PutIfAbsent(key, first, dailyCounterTTL)
			if err != nil {
				return err
			}
			if created {
				return nil
			}

			continue
		}
		if err != nil {
			return err
		}

		counter := models.DailyCounter{}
		_ = json.Unmarshal(prev, &counter)
		counter.Total++

		next, err := json.Marshal(counter)
		if err != nil {
			return err
		}

		swapped, err := u.stateRepo.CompareAndSwap(key, prev, next, dailyCounterTTL)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
	}

	return fmt.Errorf("daily counter %s under contention, increment not recorded", key)
}

func (u *guardrailUseCase) checkDebounce(event *models.SignalEvent, now time.Time) structs.Decision {
	key := debounceKeyPrefix + event.Hash()

	_, updatedAt, err := u.stateRepo.Get(key)
	if err == repository.ErrNotFound {
		return structs.Admitted()
	}
	if err != nil {
		return u.failDecision("checkDebounce", err)
	}

	age := now.Sub(updatedAt)
	if age < u.debounceWindow() {
		return structs.Skipped(structs.ReasonDebounce,
			fmt.Sprintf("duplicate event (age %.0fs < %ds)", age.Seconds(), u.cfg.DebounceSeconds))
	}

	return structs.Admitted()
}

func (u *guardrailUseCase) checkSymbolInterval(event *models.SignalEvent, now time.Time) structs.Decision {
	value, _, err := u.stateRepo.Get(symbolKeyPrefix + event.Symbol)
	if err == repository.ErrNotFound {
		return structs.Admitted()
	}
	if err != nil {
		return u.failDecision("checkSymbolInterval", err)
	}

	var state models.SymbolState
	if err := json.Unmarshal(value, &state); err != nil {
		u.logger.
			WithField("method", "checkSymbolInterval").
			WithError(err).
			Error("corrupt symbol state")

		return structs.Admitted()
	}

	age := now.Sub(state.LastTradeTS)
	if age < u.minInterval() {
		return structs.Skipped(structs.ReasonSymbolInterval,
			fmt.Sprintf("symbol %s min-interval not met (%.0fs < %ds)", event.Symbol, age.Seconds(), u.cfg.MinIntervalSeconds))
	}

	return structs.Admitted()
}

func (u *guardrailUseCase) checkDailyCap(event *models.SignalEvent, now time.Time) structs.Decision {
	value, _, err := u.stateRepo.Get(u.dailyKey(event, now))
	if err == repository.ErrNotFound {
		return structs.Admitted()
	}
	if err != nil {
		return u.failDecision("checkDailyCap", err)
	}

	var counter models.DailyCounter
	if err := json.Unmarshal(value, &counter); err != nil {
		u.logger.
			WithField("method", "checkDailyCap").
			WithError(err).
			Error("corrupt daily counter")

		return structs.Admitted()
	}

	if counter.Total >= u.cfg.MaxTradesPerDay {
		return structs.Skipped(structs.ReasonDailyCap,
			fmt.Sprintf("daily trade cap reached (%d >= %d)", counter.Total, u.cfg.MaxTradesPerDay))
	}

	return structs.Admitted()
}

func (u *guardrailUseCase) failDecision(method string, err error) structs.Decision {
	u.logger.
		WithField("method", method).
		WithError(err).
		Error("state store unavailable")

	if u.cfg.FailOpen {
		return structs.Admitted()
	}

	return structs.Skipped(structs.ReasonStateUnavailable, err.Error())
}

func (u *guardrailUseCase) debounceWindow() time.Duration {
	return time.Duration(u.cfg.DebounceSeconds) * time.Second
}

func (u *guardrailUseCase) minInterval() time.Duration {
	return time.Duration(u.cfg.MinIntervalSeconds) * time.Second
}

func (u *guardrailUseCase) dailyKey(event *models.SignalEvent, now time.Time) string {
	key := dailyKeyPrefix + now.Format("2006-01-02")
	if u.cfg.DailyCapPerSymbol {
		key += "/" + event.Symbol
	}

	return key
}
