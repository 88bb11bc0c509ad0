package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/chainpath/pkg/policy"
	"github.com/DrSkyle/chainpath/pkg/report"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <node> [neighbor...]",
		Short: "Flag a node on-chain and record its neighbors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := svc.AddEdges(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d neighbors recorded\n", args[0], len(args)-1)
			return nil
		},
	}
}

func newPathsCmd(a *app) *cobra.Command {
	var (
		filterExpr string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "paths <from> <to>",
		Short: "List paths of up to four hops between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *policy.PathFilter
			if filterExpr != "" {
				f, err := policy.Compile(filterExpr)
				if err != nil {
					return err
				}
				filter = f
			}

			svc, release, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			paths, err := svc.FindPaths(cmd.Context(), args[0], args[1], filter)
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), output, report.Result{From: args[0], To: args[1], Paths: paths})
		},
	}
	cmd.Flags().StringVar(&filterExpr, "filter", "", "CEL expression over path, degree, from, to")
	cmd.Flags().StringVarP(&output, "output", "o", report.FormatText, "Output format: text, json, csv")
	return cmd
}

func newNeighborsCmd(a *app) *cobra.Command {
	var onChain bool
	cmd := &cobra.Command{
		Use:   "neighbors <node>",
		Short: "List a node's neighbors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			get := svc.FullNeighbors
			if onChain {
				get = svc.OnChainNeighbors
			}
			names, err := get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&onChain, "on-chain", false, "Use the on-chain graph")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <node>",
		Short: "Report whether a node is flagged on-chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			ok, err := svc.IsOnChain(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "off-chain"
			if ok {
				state = "on-chain"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], state)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the stored graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			st, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			fmt.Fprintln(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
