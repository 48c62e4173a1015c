package main

import (
	"github.com/ic2hrmk/promtail"
	"github.com/sirupsen/logrus"
)

// lokiHook forwards every logrus entry to Loki through the promtail
// client.
type lokiHook struct {
	client promtail.Client
}

func (h *lokiHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *lokiHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}

	h.client.Logf(lokiLevel(entry.Level), "%s", line)

	return nil
}

func lokiLevel(level logrus.Level) promtail.Level {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return promtail.Debug
	case logrus.InfoLevel:
		return promtail.Info
	case logrus.WarnLevel:
		return promtail.Warn
	default:
		return promtail.Error
	}
}

func (a *App) initLoki() error {
	identifiers := map[string]string{
		"instanceId": a.Config.AppName,
	}

	promTail, err := promtail.NewJSONv1Client(a.Config.LokiAddr, identifiers)
	if err != nil {
		return err
	}

	a.Logger.AddHook(&lokiHook{client: promTail})

	return nil
}
