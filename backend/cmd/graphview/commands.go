package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"network-journal/backend/internal/camera"
	"network-journal/backend/internal/constants"
	"network-journal/backend/internal/engine"
	"network-journal/backend/internal/graph"
	"network-journal/backend/internal/layout"
	"network-journal/backend/internal/render"
	"network-journal/backend/internal/scene"
	"network-journal/backend/internal/state"
	"network-journal/backend/pkg/config"
	"network-journal/backend/pkg/logger"
)

type renderOptions struct {
	snapshot string
	out      string
	layout   string
	ticks    int
	selectID string
	hide     []string
	width    int
	height   int
	owner    string
	noLabels bool
	noGlow   bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "graphview",
		Short:        "Lay out and render a contact network",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd(), newLayoutsCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run the layout headlessly and write one frame as PNG",
		Long: "Loads a snapshot (from --snapshot, or from Neo4j when no file is given),\n" +
			"runs the simulation for --ticks steps and writes the final frame.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.snapshot, "snapshot", "", "snapshot JSON file (default: read from Neo4j)")
	f.StringVarP(&opts.out, "out", "o", "graph.png", "output PNG file")
	f.StringVar(&opts.layout, "layout", string(layout.KindForce), "layout: force, circular, hierarchical or radial")
	f.IntVar(&opts.ticks, "ticks", 300, "simulation ticks before the frame is taken")
	f.StringVar(&opts.selectID, "select", "", "node id to select and focus")
	f.StringSliceVar(&opts.hide, "hide", nil, "node types to hide")
	f.IntVar(&opts.width, "width", constants.DefaultViewportWidth, "frame width")
	f.IntVar(&opts.height, "height", constants.DefaultViewportHeight, "frame height")
	f.StringVar(&opts.owner, "owner", constants.DefaultOwnerName, "name of the person the network is centred on")
	f.BoolVar(&opts.noLabels, "no-labels", false, "do not draw labels")
	f.BoolVar(&opts.noGlow, "no-glow", false, "do not draw glow")
	return cmd
}

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List the available layouts",
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range layout.Kinds {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	}
}

func runRender(ctx context.Context, opts renderOptions, stdout io.Writer) error {
	log := logger.Named("graphview")

	snap, err := loadSnapshot(ctx, opts.snapshot)
	if err != nil {
		return err
	}

	cfg := engine.DefaultConfig()
	cfg.Width, cfg.Height = opts.width, opts.height
	cfg.Layout = opts.layout
	cfg.Visibility = scene.Hide(opts.hide...)
	cfg.Owner = scene.Owner{Name: opts.owner}
	cfg.Options.ShowLabels = !opts.noLabels
	cfg.Options.ShowGlow = !opts.noGlow

	e, err := engine.New(cfg)
	if err != nil {
		return err
	}
	e.Load(snap)

	// simulated clock at the default frame rate
	now := time.Unix(0, 0)
	frame := time.Second / constants.DefaultFrameRate
	for i := 0; i < opts.ticks; i++ {
		now = now.Add(frame)
		e.Step(now)
	}

	if opts.selectID != "" {
		if err := e.Select(opts.selectID); err != nil {
			return err
		}
		now = now.Add(camera.FocusDuration)
	}
	img := e.Step(now)

	if err := writePNG(opts.out, img); err != nil {
		return err
	}

	report := e.Report()
	log.Debug("Frame written", zap.String("path", opts.out), zap.Int("ticks", opts.ticks))
	fmt.Fprintf(stdout, "wrote %s (%d nodes, %d links, %d hidden, %d dropped links, layout %s)\n",
		opts.out, report.Nodes, report.Links, report.HiddenNodes, report.DroppedLinks, e.Layout())
	return nil
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render.EncodePNG(out, img); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func loadSnapshot(ctx context.Context, path string) (*state.Snapshot, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()
		return state.Decode(f)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return nil, err
	}
	defer driver.Close(ctx)
	return graph.NewRepository(driver).FetchSnapshot(ctx)
}
