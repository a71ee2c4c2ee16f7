package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/flashiz/internal/apperrors"
	"github.com/abhisek/flashiz/internal/collection"
)

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List and manage decks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDecks(cmd)
	},
}

var decksListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the deck tree with due counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDecks(cmd)
	},
}

var decksCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a deck; use :: for nesting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		id, err := e.coll.CreateDeck(cmd.Context(), args[0])
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created deck %q (id %d)\n", args[0], id)
		return nil
	},
}

var decksRenameCmd = &cobra.Command{
	Use:   "rename OLD NEW",
	Short: "Rename a deck and its subdecks",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		d, err := e.coll.DeckByName(ctx, args[0])
		if err != nil {
			return userError(err)
		}
		if err := e.coll.RenameDeck(ctx, d.ID, args[1]); err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q\n", d.Name, args[1])
		return nil
	},
}

var decksRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a deck, its subdecks and their cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		d, err := e.coll.DeckByName(ctx, args[0])
		if err != nil {
			return userError(err)
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Remove %q and all of its cards?", d.Name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}
		if err := e.coll.RemoveDeck(ctx, d.ID); err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", d.Name)
		return nil
	},
}

func init() {
	decksRemoveCmd.Flags().BoolP("yes", "y", false, "Don't ask for confirmation")

	decksCmd.AddCommand(decksListCmd)
	decksCmd.AddCommand(decksCreateCmd)
	decksCmd.AddCommand(decksRenameCmd)
	decksCmd.AddCommand(decksRemoveCmd)
}

func listDecks(cmd *cobra.Command) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	tree, err := e.coll.DeckDueTree(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-40s %5s %5s %5s\n", "DECK", "NEW", "LEARN", "DUE")
	for _, child := range tree.Children {
		printDeckNode(w, child, 0)
	}
	return nil
}

func printDeckNode(w io.Writer, n *collection.DeckNode, depth int) {
	name := strings.Repeat("  ", depth) + n.Name
	fmt.Fprintf(w, "%-40s %5d %5d %5d\n", name, n.Counts.New, n.Counts.Learn, n.Counts.Review)
	for _, child := range n.Children {
		printDeckNode(w, child, depth+1)
	}
}

// userError replaces internal details with the safe message for errors
// the user can act on.
func userError(err error) error {
	switch {
	case apperrors.Is(err, apperrors.KindValidation),
		apperrors.Is(err, apperrors.KindNotFound),
		apperrors.Is(err, apperrors.KindConflict):
		return errors.New(apperrors.PublicMessage(err))
	default:
		return err
	}
}
