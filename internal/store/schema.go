package store

import (
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	TableDecks    = "decks"
	TableNotes    = "notes"
	TableCards    = "cards"
	TableRevlog   = "revlog"
	TableSettings = "settings"
)

// DefaultDeckName names the deck created on first open.
const DefaultDeckName = "Default"

// All timestamps are stored as unix milliseconds; zero means unset.
var (
	DecksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "collapsed", Type: field.TypeBool},
		{Name: "mtime", Type: field.TypeInt64},
	}
	DecksTable = &schema.Table{
		Name:       TableDecks,
		Columns:    DecksColumns,
		PrimaryKey: []*schema.Column{DecksColumns[0]},
	}

	// Tags are stored space-separated with a leading and trailing space so
	// a single tag can be matched with LIKE '% tag %'.
	NotesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "guid", Type: field.TypeString, Unique: true},
		{Name: "kind", Type: field.TypeString},
		{Name: "fields", Type: field.TypeString, Size: 2147483647},
		{Name: "tags", Type: field.TypeString},
		{Name: "mtime", Type: field.TypeInt64},
	}
	NotesTable = &schema.Table{
		Name:       TableNotes,
		Columns:    NotesColumns,
		PrimaryKey: []*schema.Column{NotesColumns[0]},
	}

	CardsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "note_id", Type: field.TypeInt64},
		{Name: "deck_id", Type: field.TypeInt64},
		{Name: "ord", Type: field.TypeInt},
		{Name: "queue", Type: field.TypeInt},
		{Name: "stage", Type: field.TypeInt},
		{Name: "due", Type: field.TypeInt64},
		{Name: "interval_ms", Type: field.TypeInt64},
		{Name: "reps", Type: field.TypeInt},
		{Name: "lapses", Type: field.TypeInt},
		{Name: "flag", Type: field.TypeInt},
		{Name: "suspended", Type: field.TypeBool},
		{Name: "buried_until", Type: field.TypeInt64},
		{Name: "mtime", Type: field.TypeInt64},
	}
	CardsTable = &schema.Table{
		Name:       TableCards,
		Columns:    CardsColumns,
		PrimaryKey: []*schema.Column{CardsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "card_note_id", Columns: []*schema.Column{CardsColumns[1]}},
			{Name: "card_deck_id_queue_due", Columns: []*schema.Column{CardsColumns[2], CardsColumns[4], CardsColumns[6]}},
		},
	}

	RevlogColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "card_id", Type: field.TypeInt64},
		{Name: "rating", Type: field.TypeInt},
		{Name: "queue", Type: field.TypeInt},
		{Name: "interval_ms", Type: field.TypeInt64},
		{Name: "taken_ms", Type: field.TypeInt64},
		{Name: "answered_at", Type: field.TypeInt64},
	}
	RevlogTable = &schema.Table{
		Name:       TableRevlog,
		Columns:    RevlogColumns,
		PrimaryKey: []*schema.Column{RevlogColumns[0]},
		Indexes: []*schema.Index{
			{Name: "revlog_card_id", Columns: []*schema.Column{RevlogColumns[1]}},
			{Name: "revlog_answered_at", Columns: []*schema.Column{RevlogColumns[6]}},
		},
	}

	SettingsColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString},
		{Name: "value", Type: field.TypeString, Size: 2147483647},
	}
	SettingsTable = &schema.Table{
		Name:       TableSettings,
		Columns:    SettingsColumns,
		PrimaryKey: []*schema.Column{SettingsColumns[0]},
	}

	// Tables holds every table managed by the migration.
	Tables = []*schema.Table{
		DecksTable,
		NotesTable,
		CardsTable,
		RevlogTable,
		SettingsTable,
	}
)

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}
