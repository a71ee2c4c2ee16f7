// Package backend implements the collection contract on top of the local
// sqlite store and the interval ladder scheduler.
package backend

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/abhisek/flashiz/internal/apperrors"
	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/spacedrep"
	"github.com/abhisek/flashiz/internal/store"
)

// LeechAction is what happens to a card when it becomes a leech.
type LeechAction string

const (
	LeechTag     LeechAction = "tag"
	LeechSuspend LeechAction = "suspend"
)

// Options tunes queue building.
type Options struct {
	NewPerDay     int
	ReviewsPerDay int
	LearnAhead    time.Duration
	LeechAction   LeechAction

	// Now overrides the clock, for tests.
	Now    func() time.Time
	Logger *slog.Logger
}

// Local is a single-user collection backed by a sqlite store.
type Local struct {
	st    *store.Store
	sched *spacedrep.Scheduler
	opts  Options
	log   *slog.Logger
}

var _ collection.Collection = (*Local)(nil)

// New creates a Local collection.
func New(st *store.Store, sched *spacedrep.Scheduler, opts Options) *Local {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LeechAction == "" {
		opts.LeechAction = LeechTag
	}
	return &Local{
		st:    st,
		sched: sched,
		opts:  opts,
		log:   opts.Logger.With("component", "backend"),
	}
}

func (l *Local) now() time.Time {
	return l.opts.Now()
}

// touch records that the collection changed.
func touch(ctx context.Context, r store.Repo, now time.Time) error {
	return r.SetSetting(ctx, store.SettingCollectionMod, strconv.FormatInt(now.UnixMilli(), 10))
}

func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound(msg, err)
	}
	return err
}
