package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"netcanvas/internal/config"
	"netcanvas/internal/logging"
	"netcanvas/internal/repository"
	"netcanvas/internal/service"
)

var version = "0.3.0"

// app carries state shared by every subcommand once the root has loaded
// config and built the logger
type app struct {
	configPath string
	logLevel   string

	cfg        *config.Config
	loadedFrom string
	log        *slog.Logger
	closer     io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "netcanvas",
		Short: "netcanvas - compose network topologies on a canvas",
		Long: Brand.Sprint("netcanvas") + " - place routers and PCs, connect them, and save the result\n" +
			Subtle.Sprint("Serve the interactive canvas or work with saved topology files"),
		Version:            version,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	cmd.SetVersionTemplate("netcanvas {{ .Version }}\n")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: search $NETCANVAS_CONFIG, ./netcanvas.yaml, ~/.config/netcanvas)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		serveCmd(a),
		validateCmd(a),
		convertCmd(a),
		renderCmd(a),
		inspectCmd(a),
		importScanCmd(a),
		configCmd(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if a.configPath != "" {
		cfg, path, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}

	log, closer, err := logging.New(logging.Options{
		Level:   level,
		Path:    cfg.Log.Path,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	if path != "" {
		log.Debug("loaded config", "path", path)
	}

	a.cfg, a.loadedFrom, a.log, a.closer = cfg, path, log, closer
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// workspace builds a canvas workspace from config. store may be nil.
func (a *app) workspace(bus *service.EventBus, store repository.SnapshotStore) *service.Workspace {
	return service.NewWorkspace(bus, store, service.WorkspaceConfig{
		Width:         a.cfg.Canvas.Width,
		Height:        a.cfg.Canvas.Height,
		MarkerSize:    a.cfg.Canvas.MarkerSize,
		MinSeparation: a.cfg.Canvas.MinSeparation,
		Logger:        a.log,
	})
}
