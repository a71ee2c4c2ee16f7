package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/flashiz/internal/backend"
	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a note to a deck",
	Long:  "Add a note. Without --deck the note goes to the deck studied last, or the default deck.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		flags := cmd.Flags()
		deckName, _ := flags.GetString("deck")
		front, _ := flags.GetString("front")
		back, _ := flags.GetString("back")
		kind, _ := flags.GetString("kind")
		tags, _ := flags.GetStringSlice("tags")

		ctx := cmd.Context()
		deck, err := resolveDeck(ctx, e, deckName)
		if err != nil {
			return err
		}
		id, err := e.coll.AddNote(ctx, backend.NewNote{
			Deck:  deck.ID,
			Kind:  collection.NoteKind(kind),
			Front: front,
			Back:  back,
			Tags:  tags,
		})
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added note %d to %q\n", id, deck.Name)
		return nil
	},
}

func init() {
	f := addCmd.Flags()
	f.StringP("deck", "d", "", "Deck name")
	f.StringP("front", "f", "", "Front of the note")
	f.StringP("back", "b", "", "Back of the note")
	f.StringP("kind", "k", string(collection.KindBasic), "Note kind: basic, reversed or typed")
	f.StringSliceP("tags", "t", nil, "Tags, comma separated")
	addCmd.MarkFlagRequired("front")
}

// resolveDeck finds the deck called name. An empty name means the deck
// studied last, falling back to the default deck.
func resolveDeck(ctx context.Context, e *env, name string) (*collection.Deck, error) {
	if name != "" {
		d, err := e.coll.DeckByName(ctx, name)
		if err != nil {
			return nil, userError(err)
		}
		return d, nil
	}

	id := collection.DefaultDeckID
	raw, err := e.store.Setting(ctx, store.SettingCurrentDeck)
	switch {
	case err == nil:
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			id = collection.DeckID(v)
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	d, err := e.coll.Deck(ctx, id)
	if err != nil && id != collection.DefaultDeckID {
		e.log.Debug("last studied deck is gone", "deck", id)
		d, err = e.coll.Deck(ctx, collection.DefaultDeckID)
	}
	if err != nil {
		return nil, userError(err)
	}
	return d, nil
}
