package main

import (
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"
)

func (a *App) initSqlite(dbFileName string) error {
	db, err := sqlx.Connect("sqlite3", dbFileName)
	if err != nil {
		return err
	}
	a.DB = db

	return nil
}
