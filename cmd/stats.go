package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/flashiz/internal/collection"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's reviews and collection totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		st, err := e.coll.Stats(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Today:     %d reviews in %s\n", st.ReviewedToday, st.TimeToday.Round(time.Second))
		for _, r := range collection.Ratings {
			fmt.Fprintf(w, "  %-6s   %d\n", r, st.RatingsToday[r])
		}
		fmt.Fprintf(w, "Due:       %d new, %d learning, %d review\n", st.DueToday.New, st.DueToday.Learn, st.DueToday.Review)
		fmt.Fprintf(w, "Cards:     %d total\n", st.TotalCards)
		fmt.Fprintf(w, "  new        %d\n", st.NewCards)
		fmt.Fprintf(w, "  learning   %d\n", st.LearningCards)
		fmt.Fprintf(w, "  review     %d\n", st.ReviewCards)
		fmt.Fprintf(w, "  suspended  %d\n", st.SuspendedCards)
		return nil
	},
}
