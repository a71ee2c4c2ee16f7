package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/flashiz/internal/backend"
	"github.com/abhisek/flashiz/internal/collection"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import notes from a tab-separated file",
	Long: `Import notes from a tab-separated file with one note per line:

  front<TAB>back[<TAB>tags]

Tags are separated by spaces. Lines starting with # are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()

		deckName, _ := cmd.Flags().GetString("deck")
		kind, _ := cmd.Flags().GetString("kind")

		ctx := cmd.Context()
		deck, err := resolveDeck(ctx, e, deckName)
		if err != nil {
			return err
		}

		notes, err := readTSV(f, deck.ID, collection.NoteKind(kind))
		if err != nil {
			return err
		}

		added, failed := 0, 0
		for _, n := range notes {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := e.coll.AddNote(ctx, n.note); err != nil {
				failed++
				e.log.Warn("skipping line", "line", n.line, "error", err)
				continue
			}
			added++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes into %q", added, deck.Name)
		if failed > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d skipped)", failed)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	importCmd.Flags().StringP("deck", "d", "", "Deck name")
	importCmd.Flags().StringP("kind", "k", string(collection.KindBasic), "Note kind: basic, reversed or typed")
}

type importedNote struct {
	line int
	note backend.NewNote
}

// readTSV parses the import format. Blank fronts are left for AddNote to
// reject so they are reported per line.
func readTSV(r io.Reader, deck collection.DeckID, kind collection.NoteKind) ([]importedNote, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var out []importedNote
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read import file: %w", err)
		}
		line, _ := cr.FieldPos(0)
		n := backend.NewNote{Deck: deck, Kind: kind, Front: rec[0]}
		if len(rec) > 1 {
			n.Back = rec[1]
		}
		if len(rec) > 2 {
			n.Tags = strings.Fields(rec[2])
		}
		out = append(out, importedNote{line: line, note: n})
	}
}
