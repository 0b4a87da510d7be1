package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiz/internal/vocab"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Manage focus mode",
	Long: "Focus mode replaces category and topic with a free-text instruction.\n" +
		"Words generated under it accumulate until the focus is cleared.",
}

var focusSetCmd = &cobra.Command{
	Use:   "set <instruction>",
	Short: "Start focus mode, replacing any active focus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.Focus.SetCurrentFocus(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Focus set: %s\n", s.Instruction)
		return nil
	},
}

var focusAddCmd = &cobra.Command{
	Use:   "add <source> <target>",
	Short: "Add a word pair to the active focus",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		example, _ := cmd.Flags().GetString("context")
		added, err := a.Focus.AddWordsToCurrentFocus(cmd.Context(), []vocab.WordPair{
			{SourceWord: args[0], TargetWord: args[1], Context: example},
		})
		if err != nil {
			return err
		}
		if len(added) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%q is already in the focus.\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s → %s\n", args[0], args[1])
		return nil
	},
}

var focusShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active focus and its words",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		w := cmd.OutOrStdout()
		s, ok := a.Focus.Current()
		if !ok {
			fmt.Fprintln(w, "Focus mode is off.")
			return nil
		}

		fmt.Fprintf(w, "Focus:    %s\n", s.Instruction)
		fmt.Fprintf(w, "Created:  %s\n", s.DateCreated.Local().Format("2006-01-02 15:04"))
		if s.LastUsed != nil {
			fmt.Fprintf(w, "Used:     %s\n", s.LastUsed.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(w, "Words:    %d\n", len(s.Words))
		hist, err := a.Focus.History(cmd.Context(), s.Instruction)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "History:  %d remembered\n", len(hist))
		if len(s.Words) > 0 {
			fmt.Fprintln(w, strings.Repeat("─", 60))
			for _, p := range s.Words {
				fmt.Fprintf(w, "%-24s  %s\n", p.SourceWord, p.TargetWord)
			}
		}
		return nil
	},
}

var focusHistoryCmd = &cobra.Command{
	Use:   "history <instruction>",
	Short: "List the words remembered for a focus instruction",
	Long: "Words remembered for an instruction are excluded from generation the\n" +
		"next time the same instruction is focused, even after clearing it.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		instruction := strings.Join(args, " ")
		hist, err := a.Focus.History(cmd.Context(), instruction)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(hist) == 0 {
			fmt.Fprintf(w, "No words remembered for %q.\n", instruction)
			return nil
		}
		for _, word := range hist {
			fmt.Fprintln(w, word)
		}
		return nil
	},
}

var focusClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "End focus mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Focus.ClearCurrentFocus(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Focus mode is off.")
		return nil
	},
}

func init() {
	focusAddCmd.Flags().String("context", "", "Example sentence for the word")

	focusCmd.AddCommand(focusSetCmd)
	focusCmd.AddCommand(focusAddCmd)
	focusCmd.AddCommand(focusShowCmd)
	focusCmd.AddCommand(focusHistoryCmd)
	focusCmd.AddCommand(focusClearCmd)
}
