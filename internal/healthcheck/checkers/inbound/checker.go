package inboundchecker

import (
	"context"
	"fmt"

	"github.com/memohai/imgkeeper/internal/healthcheck"
)

const (
	checkTypeQueue = "inbound.queue"
	// warnRatio is the queue fill level that turns the check to warn.
	warnRatio = 0.8
)

// QueueObserver exposes the dispatcher's queue occupancy.
type QueueObserver interface {
	QueueDepth() int
	QueueCapacity() int
}

// Checker reports how full the inbound event queue is.
type Checker struct {
	observer QueueObserver
}

func NewChecker(observer QueueObserver) *Checker {
	return &Checker{observer: observer}
}

func (c *Checker) ListChecks(_ context.Context) []healthcheck.CheckResult {
	if c.observer == nil {
		return []healthcheck.CheckResult{{
			ID:      checkTypeQueue,
			Type:    checkTypeQueue,
			Status:  healthcheck.StatusWarn,
			Summary: "Inbound dispatcher is not available.",
		}}
	}
	depth, capacity := c.observer.QueueDepth(), c.observer.QueueCapacity()
	item := healthcheck.CheckResult{
		ID:       checkTypeQueue,
		Type:     checkTypeQueue,
		Status:   healthcheck.StatusOK,
		Summary:  fmt.Sprintf("Inbound queue holds %d of %d events.", depth, capacity),
		Metadata: map[string]any{"depth": depth, "capacity": capacity},
	}
	if capacity > 0 && float64(depth) >= warnRatio*float64(capacity) {
		item.Status = healthcheck.StatusWarn
		item.Detail = "events will be dropped when the queue is full"
	}
	return []healthcheck.CheckResult{item}
}
