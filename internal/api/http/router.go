package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tradeauto/internal/repository"
)

func RegisterHTTPEndpoints(f *fiber.App, executor Executor, execLogRepo repository.ExecLogRepo, l *logrus.Logger) {
	h := NewHandler(f, executor, execLogRepo, l)
	router := f.Group("api")
	router.Post("/webhook", h.Webhook)
	router.Get("/executions/:symbol", h.LastExecution)
	router.Get("/healthcheck", h.HealthCheck)
}
