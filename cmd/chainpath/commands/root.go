package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DrSkyle/chainpath/pkg/config"
	"github.com/DrSkyle/chainpath/pkg/network"
	"github.com/DrSkyle/chainpath/pkg/storage/badger"
	"github.com/DrSkyle/chainpath/pkg/telemetry"
	"github.com/DrSkyle/chainpath/pkg/version"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

// Execute runs the CLI with os.Args.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), errorStyle.Render("error: "+err.Error()))
		return err
	}
	return nil
}

// NewRootCmd builds the command tree with a private viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:           version.AppName,
		Short:         "Bounded path discovery over an on-chain acquaintance graph",
		Version:       version.Current,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default $HOME/.chainpath.yaml)")
	pf.String("store", "", "Storage backend: memory or badger")
	pf.String("data", "", "Badger data directory")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.Bool("json-logs", false, "Emit JSON logs")

	bind := map[string]string{
		"store.backend": "store",
		"store.path":    "data",
		"log.level":     "log-level",
		"log.json":      "json-logs",
	}
	for key, flag := range bind {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd)
	})

	root.AddCommand(
		newAddCmd(a),
		newPathsCmd(a),
		newNeighborsCmd(a),
		newStatusCmd(a),
		newStatsCmd(a),
		newLoadCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newSnapshotsCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) loadConfig(logOut io.Writer) error {
	path := a.cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".chainpath.yaml")
		}
		// The default file is optional.
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		a.v.SetConfigFile(path)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = telemetry.NewLogger(logOut, cfg.Log.Level, cfg.Log.JSON)
	return nil
}

// openService builds the configured backend, tracer and Service. The
// returned function releases all of them.
func (a *app) openService(ctx context.Context) (*network.Service, func(), error) {
	shutdown, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName:    version.AppName,
		ServiceVersion: version.Current,
		Endpoint:       a.cfg.Telemetry.Endpoint,
		Disabled:       a.cfg.Telemetry.Disabled,
	})
	if err != nil {
		return nil, nil, err
	}

	var svc *network.Service
	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		svc = network.NewMemory(network.WithLogger(a.logger))
	case config.BackendBadger:
		bcfg := badger.DefaultConfig(a.cfg.Store.Path)
		bcfg.SyncWrites = a.cfg.Store.SyncWrites
		bcfg.Logger = a.logger.With(slog.String("component", "badger"))
		db, err := badger.Open(bcfg)
		if err != nil {
			_ = shutdown(ctx)
			return nil, nil, err
		}
		svc = network.New(badger.NewIndex(db), network.WithLogger(a.logger), network.WithCloser(db))
	default:
		_ = shutdown(ctx)
		return nil, nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}

	release := func() {
		if err := svc.Close(); err != nil {
			a.logger.Error("close store", slog.String("error", err.Error()))
		}
		if err := shutdown(context.Background()); err != nil {
			a.logger.Warn("shutdown tracer", slog.String("error", err.Error()))
		}
	}
	return svc, release, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF99")).
			MarginBottom(1)
	flagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
)

func renderHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s %s", version.AppName, version.Current)))
	if cmd.Long != "" {
		fmt.Fprintln(out, cmd.Long)
	} else {
		fmt.Fprintln(out, cmd.Short)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, titleStyle.Render("USAGE"))
	fmt.Fprintf(out, "  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(out, titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Fprintf(out, "  %-12s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		line := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "[]" {
			line += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Fprintln(out, flagStyle.Render(line))
	})
	fmt.Fprintln(out)
}
