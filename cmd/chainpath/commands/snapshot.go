package commands

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/chainpath/pkg/storage"
)

func newExportCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot to a local path or s3://bucket/key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := snapshotLocation(a, to)
			if err != nil {
				return err
			}
			store, err := storage.Open(cmd.Context(), loc)
			if err != nil {
				return err
			}

			svc, release, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := svc.Export(cmd.Context(), store, loc.Key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s\n", loc)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Destination (default snapshot.url)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge a snapshot from a local path or s3://bucket/key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := snapshotLocation(a, from)
			if err != nil {
				return err
			}
			store, err := storage.Open(cmd.Context(), loc)
			if err != nil {
				return err
			}

			svc, release, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := svc.Import(cmd.Context(), store, loc.Key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot imported from %s\n", loc)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source (default snapshot.url)")
	return cmd
}

func newSnapshotsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots [dir-or-s3-prefix]",
		Short: "List stored snapshots",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var loc storage.Location
			if len(args) == 1 {
				l, err := storage.ParseLocation(args[0])
				if err != nil {
					return err
				}
				loc = l
			} else {
				// Everything next to the configured snapshot.
				l, err := snapshotLocation(a, "")
				if err != nil {
					return err
				}
				l.Key = path.Dir(l.Key)
				if l.Key == "." {
					l.Key = ""
				}
				loc = l
			}

			store, err := storage.Open(cmd.Context(), loc)
			if err != nil {
				return err
			}
			keys, err := store.List(cmd.Context(), loc.Key)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func snapshotLocation(a *app, flag string) (storage.Location, error) {
	raw := flag
	if raw == "" {
		raw = a.cfg.Snapshot.URL
	}
	return storage.ParseLocation(raw)
}
