package cmd

import (
	"fmt"
	"os"

	"layer-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd is the layer-manager command. Subcommands register themselves in init.
var RootCmd = &cobra.Command{
	Use:   "layer-manager",
	Short: "Reconcile 3D globe layers against their descriptions",
	Long: `layer-manager keeps the layers of a 3D globe in sync with their descriptions.

Sources are resolved from Cesium ion, object storage and OGC APIs, and every
change to a layer set is reduced to the smallest scene update: property
patches where possible, a rebuild only when a watched field requires one.

Run "start" for the HTTP API, or "reconcile" and "shader" to inspect what a
layer file produces without a server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs RootCmd and exits non-zero when a command fails.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}
	reportError(err)
	os.Exit(1)
}

func reportError(err error) {
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	l.Error("command failed", zap.Error(err))
	_ = l.Sync()
}
