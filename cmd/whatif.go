package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/induction/app"
	"github.com/kilianp07/induction/config"
	"github.com/kilianp07/induction/core/model"
)

var whatifDate string

var whatifCmd = &cobra.Command{
	Use:   "whatif <trainset-id>",
	Short: "Force a trainset to maintenance and promote a standby",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhatIf,
}

func init() {
	whatifCmd.Flags().StringVar(&whatifDate, "date", string(model.Today()), "service date (YYYY-MM-DD)")
	rootCmd.AddCommand(whatifCmd)
}

func runWhatIf(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *app.Service, cfg *config.Config) error {
		date, err := model.ParseDate(whatifDate)
		if err != nil {
			return err
		}
		res, err := svc.Engine.ApplyWhatIf(ctx, date, args[0])
		if err != nil {
			return err
		}
		if res.Promoted == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s moved to %s, no standby promoted\n", res.Focus, res.MovedTo)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s moved to %s, %s promoted to Revenue\n", res.Focus, res.MovedTo, res.Promoted)
		return nil
	})
}
