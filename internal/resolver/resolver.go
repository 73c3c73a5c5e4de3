// Package resolver maps a conversation to the folder its images are stored in.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/memohai/imgkeeper/internal/channel"
	"github.com/memohai/imgkeeper/internal/metrics"
	"github.com/memohai/imgkeeper/internal/namecache"
)

const (
	// PrivateFolder holds images sent in one-to-one chats.
	PrivateFolder = "private"
	// UnknownFolder holds images whose source kind is not recognized.
	UnknownFolder = "unknown"

	idSuffixLength = 6
	defaultTimeout = 10 * time.Second
)

var errEmptyName = errors.New("empty display name")

// Options carries the deployment switches that change folder naming.
type Options struct {
	// ResolveRoomNames enables display-name lookup for rooms. Platforms without
	// a room summary endpoint should leave it off.
	ResolveRoomNames bool
	// FallbackShortID uses only the last six id characters when a lookup fails.
	FallbackShortID bool
	// Timeout bounds one metadata lookup.
	Timeout time.Duration
}

// Resolver turns a channel.Source into a folder name. It never fails: when a
// lookup errors, the folder falls back to an id-based name.
type Resolver struct {
	api    channel.MetadataAPI
	cache  namecache.Cache
	opts   Options
	logger *slog.Logger
}

// New creates a Resolver. A nil cache disables caching.
func New(log *slog.Logger, api channel.MetadataAPI, cache namecache.Cache, opts Options) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Resolver{
		api:    api,
		cache:  cache,
		opts:   opts,
		logger: log.With(slog.String("component", "resolver")),
	}
}

// Resolve returns the folder name for source.
func (r *Resolver) Resolve(ctx context.Context, source channel.Source) string {
	switch source.Kind {
	case channel.SourceUser:
		return PrivateFolder
	case channel.SourceGroup:
		return r.resolveNamed(ctx, source, true)
	case channel.SourceRoom:
		return r.resolveNamed(ctx, source, r.opts.ResolveRoomNames)
	default:
		return UnknownFolder
	}
}

func (r *Resolver) resolveNamed(ctx context.Context, source channel.Source, lookup bool) string {
	id := source.ID()
	if id == "" {
		return UnknownFolder
	}
	kind := source.Kind.String()
	if !lookup {
		return r.fallback(kind, id)
	}
	name, err := r.displayName(ctx, source)
	if err != nil {
		r.logger.Debug("display name lookup failed",
			slog.String("source", kind),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return r.fallback(kind, id)
	}
	return fmt.Sprintf("%s_%s_%s", kind, name, lastN(id, idSuffixLength))
}

func (r *Resolver) fallback(kind, id string) string {
	if r.opts.FallbackShortID {
		return kind + "_" + lastN(id, idSuffixLength)
	}
	return kind + "_" + id
}

// displayName returns the sanitized name from the cache or, on a miss, from
// the metadata API. Concurrent misses for one id may both call the API; the
// later write wins with an equal value.
func (r *Resolver) displayName(ctx context.Context, source channel.Source) (string, error) {
	key := source.Kind.String() + ":" + source.ID()
	if r.cache != nil {
		name, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("name cache read failed", slog.String("key", key), slog.Any("error", err))
		} else if ok {
			metrics.NameLookups.WithLabelValues("hit").Inc()
			return name, nil
		}
	}

	name, err := r.lookup(ctx, source)
	if err != nil {
		metrics.NameLookups.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.NameLookups.WithLabelValues("miss").Inc()

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, name); err != nil {
			r.logger.Warn("name cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return name, nil
}

func (r *Resolver) lookup(ctx context.Context, source channel.Source) (string, error) {
	if r.api == nil {
		return "", channel.ErrSummaryUnsupported
	}
	lookupCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	var (
		summary channel.Summary
		err     error
	)
	switch source.Kind {
	case channel.SourceGroup:
		summary, err = r.api.GetGroupSummary(lookupCtx, source.ID())
	case channel.SourceRoom:
		summary, err = r.api.GetRoomSummary(lookupCtx, source.ID())
	default:
		return "", channel.ErrSummaryUnsupported
	}
	if err != nil {
		return "", err
	}
	name := Sanitize(summary.Name)
	if strings.TrimSpace(name) == "" {
		return "", errEmptyName
	}
	return name, nil
}
