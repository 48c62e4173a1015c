package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"tradeauto/models"

	"github.com/jmoiron/sqlx"
)

const execLogSchema = `
CREATE TABLE IF NOT EXISTS executions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	log_key    TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

type ExecLogRepository struct {
	conn *sqlx.DB
}

func NewExecLogRepository(conn *sqlx.DB) *ExecLogRepository {
	return &ExecLogRepository{
		conn: conn,
	}
}

func (r *ExecLogRepository) Migrate() error {
	if _, err := r.conn.Exec(execLogSchema); err != nil {
		return err
	}

	return nil
}

func (r *ExecLogRepository) Store(log *models.ExecutionLog) error {
	payload, err := json.Marshal(log)
	if err != nil {
		return err
	}

	if _, err := r.conn.Exec(
		"INSERT INTO executions (log_key, symbol, outcome, payload, created_at) VALUES (?, ?, ?, ?, ?)",
		log.Key, log.WebhookData.Symbol, log.Outcome, string(payload), time.Now().UTC(),
	); err != nil {
		return err
	}

	return nil
}

func (r *ExecLogRepository) GetLast(symbol string) (*models.ExecutionLog, error) {
	var payload string

	err := r.conn.QueryRowx(
		"SELECT payload FROM executions WHERE symbol = ? ORDER BY id DESC LIMIT 1",
		symbol,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var log models.ExecutionLog
	if err := json.Unmarshal([]byte(payload), &log); err != nil {
		return nil, err
	}

	return &log, nil
}
