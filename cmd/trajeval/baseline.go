package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/trajeval/internal/replay"
)

func newBaselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage versioned baselines in --db",
	}
	cmd.AddCommand(newPromoteCmd(), newListCmd(), newRollbackCmd())
	return cmd
}

func newPromoteCmd() *cobra.Command {
	var name, note string
	cmd := &cobra.Command{
		Use:   "promote <recording>",
		Short: "Store a recording as the active baseline of its scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read recording: %w", err)
			}
			rec, err := replay.ParseRecording(raw)
			if err != nil {
				return err
			}
			if name == "" {
				name = rec.Scenario
			}

			st, err := openStore(true)
			if err != nil {
				return err
			}
			defer st.Close()

			b, err := st.PromoteBaseline(name, raw, args[0], note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "promoted %s for %s (parent %s)\n", b.VersionID, b.Scenario, orDash(b.ParentID))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "scenario", "", "scenario name (default: the recording's scenario)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note stored with the version")
	return cmd
}

func newListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list [scenario]",
		Short: "List scenarios, or the versions of one scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(true)
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				names, err := st.ListScenarios()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(out, n)
				}
				return nil
			}

			versions, err := st.ListVersions(args[0], limit)
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				return fmt.Errorf("no baselines for %q", args[0])
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACTIVE\tVERSION\tPARENT\tCREATED\tSOURCE\tNOTE")
			for _, v := range versions {
				active := ""
				if v.Active {
					active = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", active, v.VersionID, orDash(v.ParentID),
					v.CreatedAt.Format(time.RFC3339), orDash(v.Source), v.Note)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum versions to show, 0 for all")
	return cmd
}

func newRollbackCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "rollback <scenario>",
		Short: "Make an earlier version the active baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(true)
			if err != nil {
				return err
			}
			defer st.Close()

			b, err := st.Rollback(args[0], to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "active baseline for %s is now %s\n", b.Scenario, b.VersionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target version (default: parent of the active version)")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
