package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lexiz/internal/vocab"
)

var directionCmd = &cobra.Command{
	Use:   "direction [source_to_target|target_to_source]",
	Short: "Show or set the global translation direction",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			d, err := vocab.ParseDirection(args[0])
			if err != nil {
				return err
			}
			if err := a.Directions.Set(cmd.Context(), d); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.Directions.Get())
		return nil
	},
}
