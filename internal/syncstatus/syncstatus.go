// Package syncstatus reports whether the collection needs syncing. The
// probe fails open: anything short of cancellation yields StatusNormal.
package syncstatus

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/abhisek/flashiz/internal/store"
)

// Status is shown next to the deck list.
type Status int

const (
	StatusNormal Status = iota
	StatusPending
	StatusFullSyncRequired
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFullSyncRequired:
		return "full_sync_required"
	default:
		return "normal"
	}
}

// Connectivity errors. They are expected and not worth logging.
var (
	ErrOffline     = errors.New("offline")
	ErrNotLoggedIn = errors.New("not logged in")
)

// Checker asks the sync service for the collection's status.
type Checker interface {
	SyncStatus(ctx context.Context) (Status, error)
}

// Probe asks checker for the status. Offline and logged-out errors map to
// StatusNormal silently, other errors are logged and also map to
// StatusNormal. Only cancellation is returned.
func Probe(ctx context.Context, checker Checker, log *slog.Logger) (Status, error) {
	st, err := checker.SyncStatus(ctx)
	if err == nil {
		return st, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return StatusNormal, err
	}
	if errors.Is(err, ErrOffline) || errors.Is(err, ErrNotLoggedIn) {
		return StatusNormal, nil
	}
	if log == nil {
		log = slog.Default()
	}
	log.Warn("sync status check failed", "error", err)
	return StatusNormal, nil
}

// Settings is the part of the store the local checker reads.
type Settings interface {
	Setting(ctx context.Context, key string) (string, error)
}

// LocalChecker derives the status from the collection modification time
// and the last-sync marker.
type LocalChecker struct {
	Settings Settings
	Username string
}

func (c LocalChecker) SyncStatus(ctx context.Context) (Status, error) {
	if c.Username == "" {
		return StatusNormal, ErrNotLoggedIn
	}
	mod, err := c.millis(ctx, store.SettingCollectionMod)
	if err != nil {
		return StatusNormal, err
	}
	last, err := c.millis(ctx, store.SettingLastSync)
	if err != nil {
		return StatusNormal, err
	}
	switch {
	case last.IsZero() && !mod.IsZero():
		return StatusFullSyncRequired, nil
	case mod.After(last):
		return StatusPending, nil
	default:
		return StatusNormal, nil
	}
}

func (c LocalChecker) millis(ctx context.Context, key string) (time.Time, error) {
	v, err := c.Settings.Setting(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
