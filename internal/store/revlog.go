package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/flashiz/internal/collection"
)

var revlogColumns = []string{"id", "card_id", "rating", "queue", "interval_ms", "taken_ms", "answered_at"}

// InsertRevlog appends an answer to the review log.
func (r Repo) InsertRevlog(ctx context.Context, e collection.RevlogEntry) error {
	q, args := builder().Insert(TableRevlog).
		Columns(revlogColumns[1:]...).
		Values(int64(e.CardID), int(e.Rating), int(e.Queue), e.Interval.Milliseconds(),
			e.TimeTaken.Milliseconds(), toMillis(e.Answered)).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("insert revlog: %w", err)
	}
	return nil
}

// RevlogSince returns answers given at or after since, oldest first.
func (r Repo) RevlogSince(ctx context.Context, since time.Time) ([]collection.RevlogEntry, error) {
	q, args := builder().Select(revlogColumns...).
		From(entsql.Table(TableRevlog)).
		Where(entsql.GTE("answered_at", toMillis(since))).
		OrderBy("answered_at", "id").
		Query()
	return r.revlog(ctx, q, args)
}

// RevlogForCard returns every answer given for a card, newest first.
func (r Repo) RevlogForCard(ctx context.Context, id collection.CardID) ([]collection.RevlogEntry, error) {
	q, args := builder().Select(revlogColumns...).
		From(entsql.Table(TableRevlog)).
		Where(entsql.EQ("card_id", int64(id))).
		OrderBy(entsql.Desc("answered_at"), entsql.Desc("id")).
		Query()
	return r.revlog(ctx, q, args)
}

// DeleteRevlogForCards removes the history of the given cards.
func (r Repo) DeleteRevlogForCards(ctx context.Context, ids []collection.CardID) error {
	if len(ids) == 0 {
		return nil
	}
	q, args := builder().Delete(TableRevlog).
		Where(entsql.In("card_id", cardArgs(ids)...)).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("delete revlog: %w", err)
	}
	return nil
}

func (r Repo) revlog(ctx context.Context, q string, args []any) ([]collection.RevlogEntry, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query revlog: %w", err)
	}
	defer rows.Close()

	var out []collection.RevlogEntry
	for rows.Next() {
		var (
			e                         collection.RevlogEntry
			cardID                    int64
			rating, queue             int
			interval, taken, answered int64
		)
		if err := rows.Scan(&e.ID, &cardID, &rating, &queue, &interval, &taken, &answered); err != nil {
			return nil, fmt.Errorf("scan revlog: %w", err)
		}
		e.CardID = collection.CardID(cardID)
		e.Rating = collection.Rating(rating)
		e.Queue = collection.Queue(queue)
		e.Interval = time.Duration(interval) * time.Millisecond
		e.TimeTaken = time.Duration(taken) * time.Millisecond
		e.Answered = fromMillis(answered)
		out = append(out, e)
	}
	return out, rows.Err()
}
