package main

import (
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
)

func (a *App) initPostgres(dbConfig *DB) error {
	db, err := sqlx.Connect("postgres", dbConfig.DSN())
	if err != nil {
		return err
	}
	a.PG = db

	return nil
}
