package cmd

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiz/internal/mastery"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Inspect word mastery",
}

var masteryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked words",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		category, _ := cmd.Flags().GetString("category")
		topic, _ := cmd.Flags().GetString("topic")

		all, err := a.Mastery.All(cmd.Context())
		if err != nil {
			return err
		}
		recs := slices.DeleteFunc(all, func(r mastery.Record) bool {
			return (category != "" && !strings.EqualFold(r.Category, category)) ||
				(topic != "" && !strings.EqualFold(r.Topic, topic))
		})

		w := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(w, "No tracked words.")
			return nil
		}

		fmt.Fprintf(w, "%-36s  %-20s  %-20s  %-5s  %-8s  %-9s  %s\n",
			"ID", "Word", "Translation", "Level", "Reviews", "State", "Last reviewed")
		fmt.Fprintln(w, strings.Repeat("─", 120))
		for _, r := range recs {
			last := r.LastReviewed.Local().Format("2006-01-02 15:04")
			fmt.Fprintf(w, "%-36s  %-20s  %-20s  %-5d  %-8d  %-9s  %s\n",
				r.ID, truncate(r.Word, 20), truncate(r.Translation, 20), r.Level, r.TimesReviewed, r.State(), last)
		}
		return nil
	},
}

var masteryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		recs, err := a.Mastery.All(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(w, "No tracked words yet.")
			return nil
		}

		type scopeStats struct {
			category, topic       string
			fresh, learning, done int
			reviews               int
		}
		byScope := map[string]*scopeStats{}
		for _, r := range recs {
			key := r.Category + "\x00" + r.Topic
			s, ok := byScope[key]
			if !ok {
				s = &scopeStats{category: r.Category, topic: r.Topic}
				byScope[key] = s
			}
			switch r.State() {
			case mastery.StateNew:
				s.fresh++
			case mastery.StateLearning:
				s.learning++
			case mastery.StateMastered:
				s.done++
			}
			s.reviews += r.TimesReviewed
		}

		scopes := make([]*scopeStats, 0, len(byScope))
		for _, s := range byScope {
			scopes = append(scopes, s)
		}
		slices.SortFunc(scopes, func(x, y *scopeStats) int {
			return cmp.Or(cmp.Compare(x.category, y.category), cmp.Compare(x.topic, y.topic))
		})

		fmt.Fprintf(w, "%-16s  %-24s  %6s  %8s  %8s  %8s\n", "Category", "Topic", "New", "Learning", "Mastered", "Reviews")
		fmt.Fprintln(w, strings.Repeat("─", 80))
		var total scopeStats
		for _, s := range scopes {
			fmt.Fprintf(w, "%-16s  %-24s  %6d  %8d  %8d  %8d\n",
				truncate(s.category, 16), truncate(s.topic, 24), s.fresh, s.learning, s.done, s.reviews)
			total.fresh += s.fresh
			total.learning += s.learning
			total.done += s.done
			total.reviews += s.reviews
		}
		fmt.Fprintln(w, strings.Repeat("─", 80))
		fmt.Fprintf(w, "%-16s  %-24s  %6d  %8d  %8d  %8d\n", "TOTAL", "", total.fresh, total.learning, total.done, total.reviews)
		return nil
	},
}

var masteryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Stop tracking a word",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Mastery.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
		return nil
	},
}

func init() {
	masteryListCmd.Flags().StringP("category", "c", "", "Only words in this category")
	masteryListCmd.Flags().StringP("topic", "t", "", "Only words in this topic")

	masteryCmd.AddCommand(masteryListCmd)
	masteryCmd.AddCommand(masteryStatsCmd)
	masteryCmd.AddCommand(masteryDeleteCmd)
}
