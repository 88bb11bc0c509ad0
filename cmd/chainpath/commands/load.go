package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/chainpath/pkg/network"
)

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <seed.yaml>",
		Short: "Apply a YAML list of node declarations in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := network.ParseSeed(f)
			if err != nil {
				return err
			}

			svc, release, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			n, err := svc.Seed(cmd.Context(), entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d declarations from %s\n", n, args[0])
			return nil
		},
	}
}
