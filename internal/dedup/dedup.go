// Package dedup remembers recently processed message ids so webhook
// redeliveries do not save the same image twice.
package dedup

import (
	"context"
	"time"
)

// DefaultTTL bounds how long a message id is remembered.
const DefaultTTL = 10 * time.Minute

// Store records message ids. MarkSeen returns true the first time an id is
// seen within the TTL and false for repeats. Forget releases an id so a
// later delivery is processed again.
type Store interface {
	MarkSeen(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

// Nop never reports duplicates.
type Nop struct{}

func (Nop) MarkSeen(context.Context, string) (bool, error) { return true, nil }

func (Nop) Forget(context.Context, string) error { return nil }
