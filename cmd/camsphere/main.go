package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"camsphere/internal/config"
	"camsphere/internal/hdri"
	"camsphere/internal/manifest"
	"camsphere/internal/raster"
	"camsphere/internal/scene"
	"camsphere/internal/session"
	"camsphere/internal/sphere"
)

var (
	// Global flags
	verbose    bool
	configFile string
	halfSphere bool
	overlap    float64
	flagVals   config.Flags

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "camsphere",
	Short: "Place cameras on a sphere around a target and render a dataset",
	Long: `camsphere distributes virtual cameras over a sphere around a target
point and renders one frame per camera, producing a JSON-lines manifest
that maps every placement to its output image.

Distributions: linear, uniform, fibonacci, weighted, equator_dense.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// posesCmd runs the distribution engine only and prints the pose
// sequence as JSON lines.
var posesCmd = &cobra.Command{
	Use:   "poses",
	Short: "Compute camera poses without touching a scene or renderer",
	RunE:  runPoses,
}

// renderCmd runs a full session: create cameras, render every pose,
// write the manifest, delete the cameras.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Create the camera sphere, render all poses and write the manifest",
	RunE:  runRender,
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	cfg.Resolve(flagVals)

	// bool flags can't signal "unset" through Flags; check explicitly
	if cmd.Flags().Changed("half-sphere") {
		cfg.HalfSphere = halfSphere
	}
	if cmd.Flags().Changed("overlap") {
		cfg.OverlapThreshold = overlap
	}
	return cfg, nil
}

func runPoses(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	spec, err := cfg.Spec()
	if err != nil {
		return err
	}

	poses, err := sphere.Distribute(spec)
	if err != nil {
		return err
	}
	if cfg.OverlapThreshold > 0 {
		poses = sphere.RemoveOverlapping(poses, cfg.OverlapThreshold)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, p := range poses {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	logger.Debug("poses computed",
		zap.Int("count", len(poses)),
		zap.String("distribution", spec.Distribution.String()))
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	spec, err := cfg.Spec()
	if err != nil {
		return err
	}

	sc := scene.New()
	sc.AddEmpty("target", spec.Target)
	sc.AddMesh("probe", spec.Target, 1)

	env, err := hdri.Resolve(cfg.HDRIFolder, cfg.HDRIOverride, cfg.HDRIRandomize, cfg.Seed)
	if err != nil {
		return err
	}

	opts := raster.Options{Supersample: cfg.Supersample, FloorZ: cfg.FloorHeight}
	if cfg.Plate != "" {
		plate, err := raster.LoadPlate(cfg.Plate)
		if err != nil {
			return err
		}
		opts.Plate = plate
	}
	backend := raster.NewBackend(sc, opts)

	s, err := session.New(sc, backend, spec, session.Options{
		Logger:           logger,
		NamePrefix:       "target",
		HDRI:             env,
		OverlapThreshold: cfg.OverlapThreshold,
	})
	if err != nil {
		return err
	}

	created, err := s.Create()
	if err != nil && created == 0 {
		return err
	}
	if err != nil {
		logger.Warn("some cameras were rejected by the host", zap.Error(err))
	}
	defer func() {
		if err := s.Delete(); err != nil {
			logger.Warn("camera cleanup failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := s.RenderAll(ctx, cfg.RenderParams(), cfg.OutputDir)
	if err != nil {
		return err
	}

	ok := 0
	for _, r := range records {
		if r.Status == manifest.StatusOK {
			ok++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d/%d poses to %s\n", ok, len(records), cfg.OutputDir)
	if failed := len(records) - ok; failed > 0 {
		return fmt.Errorf("%d renders failed, see manifest for details", failed)
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&configFile, "config", "", "path to config.json")
	pf.StringVarP(&flagVals.OutputDir, "output", "o", "", "output directory (default: renders)")
	pf.StringVarP(&flagVals.Distribution, "distribution", "d", "", "distribution: linear|uniform|fibonacci|weighted|equator_dense")
	pf.IntVar(&flagVals.Horizontal, "horizontal", 0, "azimuth samples per ring")
	pf.IntVar(&flagVals.Vertical, "vertical", 0, "elevation rings")
	pf.Float64Var(&flagVals.MinRadius, "min-radius", 0, "minimum camera distance")
	pf.Float64Var(&flagVals.MaxRadius, "max-radius", 0, "maximum camera distance")
	pf.IntVar(&flagVals.Samples, "samples", 0, "render samples per pixel")
	pf.IntVar(&flagVals.Width, "width", 0, "render width")
	pf.IntVar(&flagVals.Height, "height", 0, "render height")
	pf.BoolVar(&halfSphere, "half-sphere", false, "restrict cameras to the upper hemisphere")
	pf.Float64Var(&overlap, "overlap", 0, "drop poses closer than this distance")

	rootCmd.AddCommand(posesCmd)
	rootCmd.AddCommand(renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
