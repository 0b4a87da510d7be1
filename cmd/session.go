package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiz/internal/mastery"
	"github.com/abhisek/lexiz/internal/session"
	"github.com/abhisek/lexiz/internal/vocab"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start and answer vocabulary sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Compose a new session and make it current",
	Long: "Compose a session from your review words in the category and topic plus\n" +
		"new words. With focus mode active the focus instruction is used instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		req := session.Request{}
		req.Category, _ = cmd.Flags().GetString("category")
		req.Topic, _ = cmd.Flags().GetString("topic")
		req.TotalCount, _ = cmd.Flags().GetInt("count")
		req.Exclude, _ = cmd.Flags().GetStringSlice("exclude")
		if !cmd.Flags().Changed("count") {
			req.TotalCount = a.Config.Session.TotalCount
		}
		if d, _ := cmd.Flags().GetString("direction"); d != "" {
			if req.Direction, err = vocab.ParseDirection(d); err != nil {
				return err
			}
		}
		if !a.Focus.Active() && (req.Category == "" || req.Topic == "") {
			return fmt.Errorf("--category and --topic are required outside focus mode")
		}

		res, err := a.Sessions.Start(cmd.Context(), req)
		if err != nil {
			return err
		}
		printSession(cmd.OutOrStdout(), res, session.BuildSummary(res, session.Progress{}), false)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, summary, err := a.Sessions.Current(cmd.Context())
		if err != nil {
			return err
		}
		answers, _ := cmd.Flags().GetBool("answers")
		printSession(cmd.OutOrStdout(), res, summary, answers)
		return nil
	},
}

var sessionAnswerCmd = &cobra.Command{
	Use:   "answer <prompt> [response]",
	Short: "Answer one word of the current session",
	Long: "With a response, the answer is checked against the expected translation.\n" +
		"Without one, pass --correct or --wrong to grade yourself; the prompt is\n" +
		"then the source word.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		correct, _ := cmd.Flags().GetBool("correct")
		wrong, _ := cmd.Flags().GetBool("wrong")
		if len(args) == 1 && correct == wrong {
			return fmt.Errorf("pass a response, or exactly one of --correct and --wrong")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var out session.AnswerOutcome
		if len(args) == 2 {
			out, err = a.Sessions.Answer(cmd.Context(), args[0], args[1])
		} else {
			out, err = a.Sessions.RecordAnswer(cmd.Context(), args[0], correct)
		}
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), out, "")
		return nil
	},
}

var sessionPracticeCmd = &cobra.Command{
	Use:   "practice",
	Short: "Quiz yourself on the current session interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		res, _, err := a.Sessions.Current(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		in := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprintf(w, "%s (%d words). Empty line to stop.\n\n", sessionTitle(res), len(res.Words))
		for i, p := range res.Words {
			fmt.Fprintf(w, "[%d/%d] %s: ", i+1, len(res.Words), session.Prompt(p, res.Direction))
			if !in.Scan() {
				break
			}
			response := strings.TrimSpace(in.Text())
			if response == "" {
				break
			}
			out, err := a.Sessions.Answer(ctx, session.Prompt(p, res.Direction), response)
			if err != nil {
				return err
			}
			printOutcome(w, out, session.Expected(p, res.Direction))
		}
		if err := in.Err(); err != nil {
			return err
		}

		_, summary, err := a.Sessions.Current(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		printSummary(w, summary)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Sessions.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
		return nil
	},
}

func sessionTitle(res session.Result) string {
	if res.Focus() {
		return fmt.Sprintf("Focus: %s", res.CustomInstruction)
	}
	return fmt.Sprintf("%s / %s", res.Category, res.Topic)
}

func printSession(w io.Writer, res session.Result, summary session.Summary, answers bool) {
	review, fresh := res.Review(), res.New()
	fmt.Fprintf(w, "%s  [%s]  %s\n", sessionTitle(res), res.Direction, res.Date.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "%d review + %d new\n", len(review), len(fresh))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	n := 0
	printWords := func(kind string, words []vocab.WordPair) {
		for _, p := range words {
			n++
			line := session.Prompt(p, res.Direction)
			if answers {
				line += "  →  " + session.Expected(p, res.Direction)
			}
			fmt.Fprintf(w, "%2d. %-6s  %s\n", n, kind, line)
			if answers && p.Context != "" {
				fmt.Fprintf(w, "              %s\n", p.Context)
			}
		}
	}
	printWords("review", review)
	printWords("new", fresh)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	printSummary(w, summary)
}

func printSummary(w io.Writer, s session.Summary) {
	fmt.Fprintf(w, "Answered %d/%d, correct %d", s.Answered, s.Total, s.Correct)
	if s.Answered > 0 {
		fmt.Fprintf(w, " (%.0f%%)", s.Accuracy*100)
	}
	fmt.Fprintln(w)
}

func printOutcome(w io.Writer, out session.AnswerOutcome, expected string) {
	if out.Correct {
		fmt.Fprint(w, "✓ correct")
	} else {
		fmt.Fprint(w, "✗ wrong")
		if expected != "" {
			fmt.Fprintf(w, ", expected %q", expected)
		}
	}
	fmt.Fprintf(w, "  (%s: level %d/%d", out.Pair.SourceWord, out.Record.Level, mastery.MaxLevel)
	if out.Transition != nil {
		fmt.Fprintf(w, ", %s → %s", out.Transition.From, out.Transition.To)
	}
	fmt.Fprintln(w, ")")
}

func init() {
	sessionStartCmd.Flags().StringP("category", "c", "", "Category of the session, e.g. vocabulary")
	sessionStartCmd.Flags().StringP("topic", "t", "", "Topic of the session, e.g. Travail")
	sessionStartCmd.Flags().IntP("count", "n", 10, "Number of words in the session (default from session.total_count)")
	sessionStartCmd.Flags().StringP("direction", "d", "", "Translation direction override (source_to_target or target_to_source)")
	sessionStartCmd.Flags().StringSlice("exclude", nil, "Source words never to generate")

	sessionShowCmd.Flags().Bool("answers", false, "Show expected answers and context")

	sessionAnswerCmd.Flags().Bool("correct", false, "Grade the word as answered correctly")
	sessionAnswerCmd.Flags().Bool("wrong", false, "Grade the word as answered wrongly")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionAnswerCmd)
	sessionCmd.AddCommand(sessionPracticeCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}
