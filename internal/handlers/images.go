package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/memohai/imgkeeper/internal/media"
)

const imagesPrefix = "/images/"

// ImageLocator maps a storage key to a file on disk.
type ImageLocator interface {
	HostPath(key string) (string, error)
}

// ImagesHandler serves saved images read-only. When a view token is set,
// requests must carry it in the "token" query parameter.
type ImagesHandler struct {
	logger  *slog.Logger
	locator ImageLocator
	token   string
}

func NewImagesHandler(log *slog.Logger, locator ImageLocator, viewToken string) *ImagesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ImagesHandler{
		logger:  log.With(slog.String("handler", "images")),
		locator: locator,
		token:   strings.TrimSpace(viewToken),
	}
}

func (h *ImagesHandler) Register(e *echo.Echo) {
	e.GET("/images/*", h.Serve)
	e.HEAD("/images/*", h.Serve)
}

func (h *ImagesHandler) Serve(c echo.Context) error {
	if h.token != "" {
		given := c.QueryParam("token")
		if subtle.ConstantTimeCompare([]byte(given), []byte(h.token)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
	}
	if h.locator == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	// URL.Path is already decoded; folder names may contain a literal '%'.
	key, ok := strings.CutPrefix(c.Request().URL.Path, imagesPrefix)
	if !ok || strings.TrimSpace(key) == "" {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	// In-progress writes are dot-prefixed temp files.
	if strings.HasPrefix(path.Base(key), ".") {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	hostPath, err := h.locator.HostPath(key)
	if err != nil {
		if errors.Is(err, media.ErrPathTraversal) {
			h.logger.Warn("image path rejected", slog.String("key", key))
		}
		return echo.NewHTTPError(http.StatusNotFound)
	}
	info, err := os.Stat(hostPath)
	if err != nil || info.IsDir() {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return c.File(hostPath)
}
