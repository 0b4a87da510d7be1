package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiz/internal/dictionary"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage your personal dictionary",
}

var dictAddCmd = &cobra.Command{
	Use:   "add <source> <target>",
	Short: "Add a word to the dictionary",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		e := dictionary.Entry{
			SourceWord: args[0],
			TargetWord: args[1],
			SourceLang: a.Config.Learning.SourceLanguage,
			TargetLang: a.Config.Learning.TargetLanguage,
		}
		e.ContextualMeaning, _ = cmd.Flags().GetString("meaning")
		e.PartOfSpeech, _ = cmd.Flags().GetString("pos")
		e.Examples, _ = cmd.Flags().GetStringArray("example")

		stored, added, err := a.Dictionary.Add(cmd.Context(), e)
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintf(cmd.OutOrStdout(), "Already in the dictionary as %s.\n", stored.ID)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s → %s (%s)\n", stored.SourceWord, stored.TargetWord, stored.ID)
		return nil
	},
}

var dictRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a dictionary entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Dictionary.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", args[0])
		return nil
	},
}

var dictListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dictionary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Dictionary.List(cmd.Context())
		if err != nil {
			return err
		}
		printEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

var dictSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Pick random entries to practice",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, _ := cmd.Flags().GetInt("count")
		entries, err := a.Dictionary.SampleForExercise(cmd.Context(), n)
		if err != nil {
			return err
		}
		printEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

var dictImportCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.csv>",
	Short: "Import entries from a spreadsheet",
	Long: "Import entries from an .xlsx or .csv file. By default columns A-G hold\n" +
		"source, target, meaning, part of speech, examples (separated by ';'),\n" +
		"source language and target language, with a header in row 1.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := dictionary.DefaultImportConfig()
		cfg.SheetName, _ = cmd.Flags().GetString("sheet")
		cfg.StartRow, _ = cmd.Flags().GetInt("start-row")
		cfg.SourceColumn, _ = cmd.Flags().GetString("source-col")
		cfg.TargetColumn, _ = cmd.Flags().GetString("target-col")
		cfg.SourceLang = a.Config.Learning.SourceLanguage
		cfg.TargetLang = a.Config.Learning.TargetLanguage

		res, err := a.Dictionary.ImportFile(cmd.Context(), args[0], cfg)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Processed %d rows: %d added, %d skipped, %d errors\n",
			res.TotalProcessed, res.Created, res.Skipped, len(res.Errors))
		for _, e := range res.Errors {
			fmt.Fprintln(w, "  "+e)
		}
		return nil
	},
}

var dictExportCmd = &cobra.Command{
	Use:   "export <file.xlsx|file.csv>",
	Short: "Export the dictionary to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Dictionary.ExportFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, args[0])
		return nil
	},
}

func printEntries(w io.Writer, entries []dictionary.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No dictionary entries.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-20s  %-20s  %s\n", "ID", "Source", "Target", "Meaning")
	fmt.Fprintln(w, strings.Repeat("─", 100))
	for _, e := range entries {
		fmt.Fprintf(w, "%-36s  %-20s  %-20s  %s\n", e.ID, truncate(e.SourceWord, 20), truncate(e.TargetWord, 20), e.ContextualMeaning)
	}
}

func init() {
	dictAddCmd.Flags().String("meaning", "", "Contextual meaning")
	dictAddCmd.Flags().String("pos", "", "Part of speech")
	dictAddCmd.Flags().StringArray("example", nil, "Example sentence (repeatable)")

	dictSampleCmd.Flags().IntP("count", "n", 10, "Number of entries (0 for all)")

	dictImportCmd.Flags().String("sheet", "", "Worksheet name (xlsx only; default first sheet)")
	dictImportCmd.Flags().Int("start-row", 2, "First data row (1-based)")
	dictImportCmd.Flags().String("source-col", "A", "Column holding the source word")
	dictImportCmd.Flags().String("target-col", "B", "Column holding the target word")

	dictCmd.AddCommand(dictAddCmd)
	dictCmd.AddCommand(dictRemoveCmd)
	dictCmd.AddCommand(dictListCmd)
	dictCmd.AddCommand(dictSampleCmd)
	dictCmd.AddCommand(dictImportCmd)
	dictCmd.AddCommand(dictExportCmd)
}
