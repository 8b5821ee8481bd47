package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"layer-manager/core/config"
	"layer-manager/core/logger"
	"layer-manager/feature/viewer"
	"layer-manager/feature/voxel"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jsonReconcile bool

// reconcileCmd applies one or more layer files to a headless scene in order.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <layers.yaml> [next.yaml...]",
	Short: "Apply layer files to a headless scene and report the changes",
	Long: `Applies every layer file in order to the same headless scene, the way a viewer
applies successive layer lists. After each file the added, updated, removed and
failed layers are reported together with the resulting scene.

Examples:
  # Load a layer set
  reconcile layers.yaml

  # See what switching to another set changes
  reconcile layers.yaml next.yaml --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&jsonReconcile, "json", false, "Print every step as JSON")
	RootCmd.AddCommand(reconcileCmd)
}

type reconcileStep struct {
	File   string            `json:"file"`
	Report viewer.SyncReport `json:"report"`
	Scene  any               `json:"scene"`
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	h, err := newHeadless(cfg, l)
	if err != nil {
		return err
	}
	session := viewer.NewSession(h.env, voxel.NewProgramCache())

	var steps []reconcileStep
	for _, path := range args {
		layers, exaggeration, err := readLayerFile(path)
		if err != nil {
			return err
		}
		if err := session.SetExaggeration(exaggeration); err != nil {
			return err
		}

		report, err := session.Sync(ctx, layers)
		if err != nil {
			l.Warn("Layers failed to apply", zap.String("file", path), zap.Error(err))
		}
		snap := h.scene.Snapshot()
		steps = append(steps, reconcileStep{File: path, Report: report, Scene: snap})

		l.Info("Layer file applied",
			zap.String("file", path),
			zap.Strings("added", report.Added),
			zap.Strings("updated", report.Updated),
			zap.Strings("removed", report.Removed),
			zap.Int("failed", len(report.Failed)),
			zap.Int("primitives", len(snap.Primitives)),
			zap.Int("imagery", len(snap.Imagery)),
			zap.Int("data_sources", len(snap.DataSources)),
			zap.Int64("mutations", snap.Mutations),
		)
	}

	if jsonReconcile {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(steps)
	}
	return nil
}
