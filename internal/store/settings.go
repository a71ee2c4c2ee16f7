package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// Well-known settings keys.
const (
	SettingNavState      = "nav_state"
	SettingCurrentDeck   = "current_deck"
	SettingCollectionMod = "collection_mtime"
	SettingLastSync      = "last_sync"
)

// Setting returns the value stored under key, or ErrNotFound.
func (r Repo) Setting(ctx context.Context, key string) (string, error) {
	q, args := builder().Select("value").
		From(entsql.Table(TableSettings)).
		Where(entsql.EQ("key", key)).
		Query()
	var v string
	if err := r.q.QueryRowContext(ctx, q, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query setting %s: %w", key, err)
	}
	return v, nil
}

// SetSetting stores value under key, replacing any previous value.
func (r Repo) SetSetting(ctx context.Context, key, value string) error {
	q, args := builder().Insert(TableSettings).
		Columns("key", "value").
		Values(key, value).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}
