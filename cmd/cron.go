package main

import (
	"time"

	"tradeauto/internal/repository"

	"github.com/robfig/cron/v3"
)

// initCron starts the hourly janitor that drops expired state rows.
// Sqlite and postgres have no native TTL, so expiry is enforced on read
// and reclaimed here.
func (a *App) initCron(stateRepo repository.StateRepo) error {
	a.Cron = cron.New()

	if _, err := a.Cron.AddFunc("@hourly", func() {
		purged, err := stateRepo.PurgeExpired(time.Now().UTC())
		if err != nil {
			a.Logger.
				WithField("method", "initCron").
				WithError(err).
				Error("state purge failed")

			return
		}

		if purged > 0 {
			a.Logger.
				WithField("method", "initCron").
				Infof("purged %d expired state rows", purged)
		}
	}); err != nil {
		return err
	}

	a.Cron.Start()

	return nil
}
