package main

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	Config     *Config
	Logger     *logrus.Logger
	HTTPClient *http.Client
	TGM        *tgbotapi.BotAPI
	Fiber      *fiber.App
	Cron       *cron.Cron
	Metrics    *Metrics

	// DB is the sqlite handle, always open. PG is only set when the
	// state backend is postgres; Mongo only when the audit backend is
	// mongo.
	DB    *sqlx.DB
	PG    *sqlx.DB
	Mongo *mongo.Client
}
