package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/insights-gateway/internal/query"
)

var (
	queryTopic   string
	queryRep     string
	queryCompany string
	queryDeal    string
	queryCall    string
	queryFrom    string
	queryTo      string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a single insights query and print the JSON envelope",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newEngine()

		params := query.Params{
			Topic:   queryTopic,
			Rep:     queryRep,
			Company: queryCompany,
			DealID:  queryDeal,
			CallID:  queryCall,
			From:    queryFrom,
			To:      queryTo,
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		result, err := engine.Run(cmd.Context(), params)
		if err != nil {
			status, body := query.TranslateError(err)
			_ = enc.Encode(body)
			return eris.Errorf("query failed with status %d", status)
		}

		return enc.Encode(result)
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryTopic, "topic", "calls", "query topic (users, calls, deals, deal, deal_calls, highlights, summary, extensive, transcripts)")
	queryCmd.Flags().StringVar(&queryRep, "rep", "", "salesperson name")
	queryCmd.Flags().StringVar(&queryCompany, "company", "", "company or deal name")
	queryCmd.Flags().StringVar(&queryDeal, "deal", "", "deal ID")
	queryCmd.Flags().StringVar(&queryCall, "call", "", "call ID")
	queryCmd.Flags().StringVar(&queryFrom, "from", "", "start date (YYYY-MM-DD or RFC 3339)")
	queryCmd.Flags().StringVar(&queryTo, "to", "", "end date (YYYY-MM-DD or RFC 3339)")
	rootCmd.AddCommand(queryCmd)
}
