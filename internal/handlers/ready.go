package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/imgkeeper/internal/healthcheck"
)

type ReadyHandler struct {
	logger   *slog.Logger
	checkers []healthcheck.Checker
}

type ReadyResponse struct {
	Status string                    `json:"status"`
	Checks []healthcheck.CheckResult `json:"checks"`
}

func NewReadyHandler(log *slog.Logger, checkers []healthcheck.Checker) *ReadyHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ReadyHandler{
		logger:   log.With(slog.String("handler", "ready")),
		checkers: checkers,
	}
}

func (h *ReadyHandler) Register(e *echo.Echo) {
	e.GET("/ready", h.Ready)
}

// Ready runs every checker and answers 503 when any check failed.
func (h *ReadyHandler) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	checks := make([]healthcheck.CheckResult, 0, len(h.checkers))
	for _, checker := range h.checkers {
		if checker == nil {
			continue
		}
		checks = append(checks, checker.ListChecks(ctx)...)
	}
	resp := ReadyResponse{Status: healthcheck.Overall(checks), Checks: checks}
	code := http.StatusOK
	if resp.Status == healthcheck.StatusError {
		code = http.StatusServiceUnavailable
		h.logger.Warn("readiness check failed", slog.Int("checks", len(checks)))
	}
	return c.JSON(code, resp)
}
