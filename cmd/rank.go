package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/induction/app"
	"github.com/kilianp07/induction/config"
	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/infra/logger"
)

var (
	rankDate  string
	rankQuota int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Run one ranking pass and print the plan",
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rankDate, "date", string(model.Today()), "service date (YYYY-MM-DD)")
	rankCmd.Flags().IntVar(&rankQuota, "quota", 0, "revenue quota override")
	rootCmd.AddCommand(rankCmd)
}

// withService loads the configuration, builds the service and hands it to fn.
func withService(fn func(ctx context.Context, svc *app.Service, cfg *config.Config) error) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Command invocations never need the broker connection.
	cfg.MQTT.Broker = ""
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return fn(context.Background(), svc, cfg)
}

func runRank(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *app.Service, cfg *config.Config) error {
		date, err := model.ParseDate(rankDate)
		if err != nil {
			return err
		}
		quota := cfg.Planner.RevenueQuota
		if rankQuota > 0 {
			quota = rankQuota
		}
		plan, err := svc.Engine.RunRanking(ctx, date, quota)
		if err != nil {
			return err
		}
		rev, sby, mnt := plan.Counts()
		fmt.Fprintf(cmd.OutOrStdout(), "pass %s on %s: %d revenue, %d standby, %d maintenance\n",
			plan.PassID, plan.Date, rev, sby, mnt)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		type line struct {
			TrainsetID string `json:"trainset_id"`
			Decision   string `json:"decision"`
		}
		out := make([]line, 0, rev+sby+mnt)
		for _, group := range [][]model.TrainRecord{plan.Revenue, plan.Standby, plan.Maintenance} {
			for _, r := range group {
				out = append(out, line{TrainsetID: r.TrainsetID, Decision: string(r.Decision)})
			}
		}
		return enc.Encode(out)
	})
}
