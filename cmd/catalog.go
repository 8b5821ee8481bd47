package cmd

import (
	"fmt"

	"layer-manager/core/config"
	"layer-manager/core/database"
	"layer-manager/core/logger"
	"layer-manager/feature/catalog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// catalogCmd is the parent command for the stored layer catalog.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the stored layer catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <layers.yaml>",
	Short: "Replace the stored catalog with a layer file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, l, err := openCatalog()
		if err != nil {
			return err
		}
		layers, _, err := readLayerFile(args[0])
		if err != nil {
			return err
		}
		if err := store.Replace(cmd.Context(), layers); err != nil {
			return err
		}
		l.Info("Catalog imported", zap.String("file", args[0]), zap.Int("layers", len(layers)))
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored layers, top first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openCatalog()
		if err != nil {
			return err
		}
		layers, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		for i, l := range layers {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-12s %s\n", i, l.Type(), l.Common().ID)
		}
		return nil
	},
}

var catalogVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the catalog table schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, l, err := openCatalog()
		if err != nil {
			return err
		}
		missing, err := store.Verify()
		if err != nil {
			l.Warn("Catalog schema mismatch", zap.Strings("missing", missing))
			return err
		}
		l.Info("Catalog schema is complete")
		return nil
	},
}

func openCatalog() (*catalog.Store, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := catalog.NewStore(db, l)
	if err := store.Migrate(); err != nil {
		return nil, nil, err
	}
	return store, l, nil
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd, catalogListCmd, catalogVerifyCmd)
	RootCmd.AddCommand(catalogCmd)
}
