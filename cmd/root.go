package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/insights-gateway/internal/config"
	"github.com/sells-group/insights-gateway/internal/query"
	"github.com/sells-group/insights-gateway/internal/refdata"
	"github.com/sells-group/insights-gateway/pkg/gong"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "insights-gateway",
	Short: "Query gateway for Gong conversation analytics",
	Long:  "Resolves rep names, company names, and date ranges to Gong API queries, paginates and aggregates the results, and returns normalized JSON envelopes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newEngine wires the Gong client, reference cache, and query engine
// from the loaded configuration.
func newEngine() *query.Engine {
	client := gong.NewClient(cfg.Gong.AccessKey, cfg.Gong.AccessSecret,
		gong.WithBaseURL(cfg.Gong.BaseURL),
		gong.WithPageSize(cfg.Gong.PageSize),
		gong.WithTimeout(time.Duration(cfg.Gong.TimeoutSecs)*time.Second),
		gong.WithRateLimit(rate.Limit(cfg.Gong.RateLimit), cfg.Gong.RateBurst),
	)
	return query.New(client, refdata.New(client))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
