package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trajeval/internal/logging"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	var verbose bool
	cmd := &cobra.Command{
		Use:   "history [scenario]",
		Short: "Show recent evaluations recorded in --db",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(true)
			if err != nil {
				return err
			}
			defer st.Close()

			var name string
			if len(args) == 1 {
				name = args[0]
			}
			entries, err := logging.RecentEvaluations(st.DB(), name, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tSCENARIO\tFINAL\tRAW\tLABEL\tACTION\tBASELINE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%s\t%s\t%s\n",
					e.CreatedAt.Local().Format(time.DateTime), e.Scenario, e.FinalScore, e.RawScore,
					e.Label, e.Action, orDash(e.BaselineVersion))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if verbose {
				for _, e := range entries {
					var rec logging.VerdictRecord
					if e.VerdictJSON == "" || json.Unmarshal([]byte(e.VerdictJSON), &rec) != nil {
						continue
					}
					fmt.Fprintf(out, "\n%s (run %s): %s\n", e.Scenario, e.RunID, rec.GateReason)
					for i, line := range rec.Invocations {
						fmt.Fprintf(out, "  Invocation %d: %s\n", i+1, line)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries, 0 for all")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print per-invocation detail")
	return cmd
}
