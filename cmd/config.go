package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	stateBackendSqlite   = "sqlite"
	stateBackendPostgres = "postgres"

	auditBackendSqlite = "sqlite"
	auditBackendMongo  = "mongo"

	dailyCapScopeGlobal = "global"
	dailyCapScopeSymbol = "symbol"
)

type Config struct {
	AppName    string
	LogLevel   string
	LokiAddr   string
	ListenAddr string

	TelegramApiToken string
	TelegramChatID   string

	BrokerUrl       string
	BrokerDataUrl   string
	BrokerApiKey    string
	BrokerSecretKey string

	WebhookSharedSecret string
	WebhookHmacSecret   string

	EventBusUrl         string
	DownstreamInvokeUrl string

	AutoExecute   bool
	MinConfidence float64

	DebounceSeconds    int
	MinIntervalSeconds int
	MaxTradesPerDay    int
	DailyCapScope      string
	GuardrailFailOpen  bool

	StateBackend string
	AuditBackend string

	DB    *DB
	Mongo *Mongo
}

type DB struct {
	Host     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Mongo struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

var ErrEnvNotFound = errors.New("err env not found")

func (a *App) loadConfig(confFileName string) error {
	var cfg Config

	// The env file is optional; real deployments inject plain env vars.
	_ = godotenv.Load(confFileName)

	var err error

	cfg.AppName = setDefault("APP_NAME", "tradeauto")
	cfg.LogLevel = setDefault("LOG_LEVEL", "INFO")
	cfg.LokiAddr = os.Getenv("LOKI_ADDR")
	cfg.ListenAddr = setDefault("LISTEN_ADDR", ":8080")

	cfg.TelegramApiToken = os.Getenv("TELEGRAM_API_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	cfg.BrokerUrl = setDefault("BROKER_URL", "https://paper-api.alpaca.markets")
	cfg.BrokerDataUrl = setDefault("BROKER_DATA_URL", "https://data.alpaca.markets")

	if cfg.BrokerApiKey, err = cfg.set("BROKER_API_KEY"); err != nil {
		return err
	}

	if cfg.BrokerSecretKey, err = cfg.set("BROKER_SECRET_KEY"); err != nil {
		return err
	}

	cfg.WebhookSharedSecret = os.Getenv("WEBHOOK_SHARED_SECRET")
	cfg.WebhookHmacSecret = os.Getenv("WEBHOOK_HMAC_SECRET")

	cfg.EventBusUrl = os.Getenv("EVENT_BUS_URL")
	cfg.DownstreamInvokeUrl = os.Getenv("DOWNSTREAM_INVOKE_URL")

	if cfg.AutoExecute, err = setBool("AUTO_EXECUTE", false); err != nil {
		return err
	}

	if cfg.MinConfidence, err = setFloat("MIN_CONFIDENCE", 0); err != nil {
		return err
	}

	if cfg.DebounceSeconds, err = setInt("DEBOUNCE_SECONDS", 30); err != nil {
		return err
	}

	if cfg.MinIntervalSeconds, err = setInt("MIN_INTERVAL_SAME_SYMBOL_SECONDS", 300); err != nil {
		return err
	}

	if cfg.MaxTradesPerDay, err = setInt("MAX_TRADES_PER_DAY", 10); err != nil {
		return err
	}

	cfg.DailyCapScope = setDefault("DAILY_CAP_SCOPE", dailyCapScopeGlobal)
	if cfg.DailyCapScope != dailyCapScopeGlobal && cfg.DailyCapScope != dailyCapScopeSymbol {
		return fmt.Errorf("unknown DAILY_CAP_SCOPE %q", cfg.DailyCapScope)
	}

	if cfg.GuardrailFailOpen, err = setBool("GUARDRAIL_FAIL_OPEN", false); err != nil {
		return err
	}

	cfg.StateBackend = setDefault("STATE_BACKEND", stateBackendSqlite)
	cfg.AuditBackend = setDefault("AUDIT_BACKEND", auditBackendSqlite)

	if cfg.StateBackend == stateBackendPostgres {
		var db DB

		if db.Host, err = cfg.set("PG_HOST"); err != nil {
			return err
		}

		if db.User, err = cfg.set("PG_USER"); err != nil {
			return err
		}

		if db.Password, err = cfg.set("PG_PASSWORD"); err != nil {
			return err
		}

		if db.DBName, err = cfg.set("PG_DBNAME"); err != nil {
			return err
		}

		if db.SSLMode, err = cfg.set("PG_SSL_MODE"); err != nil {
			return err
		}

		cfg.DB = &db
	}

	if cfg.AuditBackend == auditBackendMongo {
		var m Mongo

		if m.Host, err = cfg.set("MONGO_HOST"); err != nil {
			return err
		}

		m.Port = setDefault("MONGO_PORT", "27017")

		if m.User, err = cfg.set("MONGO_USER"); err != nil {
			return err
		}

		if m.Password, err = cfg.set("MONGO_PASSWORD"); err != nil {
			return err
		}

		if m.DBName, err = cfg.set("MONGO_DBNAME"); err != nil {
			return err
		}

		cfg.Mongo = &m
	}

	a.Config = &cfg

	return nil
}

func (d *DB) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode)
}

func (m *Mongo) DSN() string {
	return fmt.Sprintf("mongodb://%s:%s", m.Host, m.Port)
}

func (c *Config) set(key string) (string, error) {
	if os.Getenv(key) == "" {
		return "", fmt.Errorf("%w: %s", ErrEnvNotFound, key)
	}

	return os.Getenv(key), nil
}

func setDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func setInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", key, err)
	}

	return parsed, nil
}

func setFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %w", key, err)
	}

	return parsed, nil
}

func setBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("bad %s: %w", key, err)
	}

	return parsed, nil
}
