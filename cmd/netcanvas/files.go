package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"netcanvas/internal/codec"
	"netcanvas/internal/scan"
	"netcanvas/internal/service"
)

// load reads a topology file into a fresh workspace without a snapshot store
func (a *app) load(path string) (*service.Workspace, error) {
	ws := a.workspace(service.NewEventBus(), nil)
	if err := ws.LoadFile(path); err != nil {
		return nil, err
	}
	return ws, nil
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check that topology files load cleanly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				ws, err := a.load(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "  %s %s  %s\n", statusIcon(false), path, Bad.Sprint(err))
					continue
				}
				state := ws.State()
				fmt.Fprintf(out, "  %s %s  %s\n", statusIcon(true), path,
					Subtle.Sprintf("%d nodes, %d connections", len(state.Nodes), len(state.Edges)))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
}

func convertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a topology between json, yaml and ansible inventory",
		Long: `Convert a topology file. Formats come from the file extensions.

  netcanvas convert network_graph.json topology.yaml
  netcanvas convert topology.yaml inventory.ansible`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			ws, err := a.load(in)
			if err != nil {
				return err
			}
			if err := ws.SaveFile(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s %s %s\n", statusIcon(true), in, Subtle.Sprint("→"), Brand.Sprint(out))
			return nil
		},
	}
}

func renderCmd(a *app) *cobra.Command {
	var (
		output string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Rasterise a topology to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width > 0 {
				a.cfg.Canvas.Width = width
			}
			if height > 0 {
				a.cfg.Canvas.Height = height
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
			}

			ws, err := a.load(args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := ws.ExportPNG(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s wrote %s %s\n", statusIcon(true), Brand.Sprint(output),
				Subtle.Sprintf("(%dx%d)", a.cfg.Canvas.Width, a.cfg.Canvas.Height))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG path (default: input name with .png)")
	cmd.Flags().IntVar(&width, "width", 0, "canvas width in pixels (overrides config)")
	cmd.Flags().IntVar(&height, "height", 0, "canvas height in pixels (overrides config)")

	return cmd
}

func inspectCmd(a *app) *cobra.Command {
	var nodeID int

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the nodes of a topology, or describe one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ws, err := a.load(args[0])
			if err != nil {
				return err
			}

			if nodeID > 0 {
				detail, err := ws.Node(nodeID)
				if err != nil {
					return err
				}
				fmt.Fprint(out, detail.Info)
				return nil
			}

			state := ws.State()
			if len(state.Nodes) == 0 {
				fmt.Fprintln(out, Warn.Sprint("  empty topology"))
				return nil
			}

			rows := make([][]string, 0, len(state.Nodes))
			for _, n := range state.Nodes {
				rows = append(rows, []string{
					strconv.Itoa(n.ID),
					n.Type,
					fmt.Sprintf("%.2f", n.X),
					fmt.Sprintf("%.2f", n.Y),
					n.Status,
					joinIDs(n.ConnectedTo),
				})
			}
			table(out, []string{"ID", "TYPE", "X", "Y", "STATUS", "CONNECTED TO"}, rows)
			fmt.Fprintf(out, "\n  %s\n", Subtle.Sprintf("%d nodes, %d connections", len(state.Nodes), len(state.Edges)))
			return nil
		},
	}

	cmd.Flags().IntVar(&nodeID, "node", 0, "describe a single node by id")

	return cmd
}

func importScanCmd(a *app) *cobra.Command {
	var (
		output  string
		targets []string
		timeout time.Duration
		noPing  bool
	)

	cmd := &cobra.Command{
		Use:   "import-scan [nmap.xml]",
		Short: "Build a topology from an nmap report or a live scan",
		Long: `Build a star topology from the hosts an nmap scan found up. The
gateway (address ending in .1) becomes the router; every other host becomes a
PC connected to it.

  nmap -sn -oX scan.xml 192.168.1.0/24
  netcanvas import-scan scan.xml -o network_graph.json
  netcanvas import-scan --target 192.168.1.0/24   # run nmap directly`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws := a.workspace(service.NewEventBus(), nil)

			switch {
			case len(args) == 1 && len(targets) > 0:
				return fmt.Errorf("give either a report file or --target, not both")
			case len(args) == 1:
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open scan: %w", err)
				}
				defer f.Close()
				if err := ws.ImportScan(f); err != nil {
					return err
				}
			case len(targets) > 0:
				scanner := scan.New(targets,
					scan.WithTimeout(timeout),
					scan.WithSkipHostDiscovery(noPing),
					scan.WithLogger(a.log.With("component", "scan")),
				)
				if !scanner.Available(cmd.Context()) {
					return fmt.Errorf("nmap binary not found in PATH")
				}
				if err := ws.ScanNetwork(cmd.Context(), scanner); err != nil {
					return err
				}
			default:
				return fmt.Errorf("a report file or at least one --target is required")
			}

			if err := ws.SaveFile(output); err != nil {
				return err
			}

			state := ws.State()
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %d hosts → %s\n", statusIcon(true), len(state.Nodes), Brand.Sprint(output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", codec.DefaultFileName, "topology file to write")
	cmd.Flags().StringSliceVarP(&targets, "target", "t", nil, "CIDR range or address to scan live (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "live scan timeout")
	cmd.Flags().BoolVar(&noPing, "no-ping", false, "treat every host as up (-Pn)")

	return cmd
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
