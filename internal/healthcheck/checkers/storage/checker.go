package storagechecker

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/memohai/imgkeeper/internal/healthcheck"
)

const checkTypeStorage = "storage.writable"

// Checker verifies the image root exists and accepts new files.
type Checker struct {
	logger *slog.Logger
	root   string
}

// NewChecker creates a storage health checker for root.
func NewChecker(log *slog.Logger, root string) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		logger: log.With(slog.String("checker", "healthcheck_storage")),
		root:   root,
	}
}

func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	item := healthcheck.CheckResult{
		ID:       checkTypeStorage,
		Type:     checkTypeStorage,
		Status:   healthcheck.StatusOK,
		Summary:  "Image storage is writable.",
		Metadata: map[string]any{"root": c.root},
	}
	if err := ctx.Err(); err != nil {
		item.Status = healthcheck.StatusUnknown
		item.Summary = "Storage check cancelled."
		return []healthcheck.CheckResult{item}
	}
	if err := probe(c.root); err != nil {
		c.logger.Warn("storage probe failed", slog.String("root", c.root), slog.Any("error", err))
		item.Status = healthcheck.StatusError
		item.Summary = "Image storage is not writable."
		item.Detail = err.Error()
	}
	return []healthcheck.CheckResult{item}
}

func probe(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	f, err := os.CreateTemp(root, ".health-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
