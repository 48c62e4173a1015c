package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tradeauto/internal/repository"
	"tradeauto/internal/usecasees"
	"tradeauto/internal/usecasees/structs"
)

// Executor processes one raw inbound webhook request.
type Executor interface {
	Execute(body []byte, headers map[string]string) *structs.ExecutionResponse
}

type Handler struct {
	fiber       *fiber.App
	executor    Executor
	execLogRepo repository.ExecLogRepo
	logger      *logrus.Logger
}

func NewHandler(f *fiber.App, executor Executor, execLogRepo repository.ExecLogRepo, l *logrus.Logger) *Handler {
	return &Handler{
		fiber:       f,
		executor:    executor,
		execLogRepo: execLogRepo,
		logger:      l,
	}
}

func (h *Handler) Webhook(c *fiber.Ctx) error {
	headers := map[string]string{}
	for _, key := range []string{usecasees.HeaderSharedSecret, usecasees.HeaderSignature} {
		if value := c.Get(key); value != "" {
			headers[key] = value
		}
	}

	resp := h.executor.Execute(c.Body(), headers)

	return c.Status(resp.Status).JSON(resp)
}

// LastExecution answers why the most recent order for a symbol was (or was
// not) placed.
func (h *Handler) LastExecution(c *fiber.Ctx) error {
	symbol := strings.ToUpper(c.Params("symbol"))

	log, err := h.execLogRepo.GetLast(symbol)
	if err != nil {
		h.logger.
			WithField("method", "LastExecution").
			WithError(err).
			Error("execution log read failed")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if log == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	return c.JSON(log)
}

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	body := struct {
		Status bool `json:"status"`
	}{
		Status: true,
	}

	if err := c.JSON(body); err != nil {
		return err
	}

	return nil
}
