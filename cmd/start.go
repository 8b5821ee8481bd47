package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"layer-manager/core/config"
	"layer-manager/core/database"
	"layer-manager/core/loader"
	"layer-manager/core/logger"
	"layer-manager/core/middleware/auth"
	"layer-manager/core/middleware/rayid"
	"layer-manager/feature/catalog"
	"layer-manager/feature/viewer"
	"layer-manager/feature/voxel"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Serve the layer API over a headless scene",
	Long: `start loads the configuration, restores the initial layer set from the
layer file or the catalog, and serves the viewer and catalog routes until
SIGINT or SIGTERM. On shutdown every layer is torn down.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Catalog database unavailable, catalog disabled", zap.Error(err))
	} else {
		db = conn
		logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))
	}

	h, err := newHeadless(cfg, logg)
	if err != nil {
		return err
	}
	h.probeBucket(cmd.Context(), cfg.Storage.Bucket, logg)

	session := viewer.NewSession(h.env, voxel.Programs)
	if err := session.SetExaggeration(cfg.Viewer.Exaggeration); err != nil {
		return err
	}

	catalogFeature := catalog.NewFeature(db, logg)
	var persisted viewer.Catalog
	if cfg.Viewer.Persist && catalogFeature.IsEnabled() {
		persisted = catalogFeature.Store()
	}

	mgr := loader.NewManager()
	mgr.Register(viewer.NewFeature(session, h.scene, persisted, logg))
	mgr.Register(catalogFeature)

	app := newApp(cfg, logg)
	if err := mgr.LoadAll(app); err != nil {
		return err
	}

	restoreLayers(cmd.Context(), cfg, session, catalogFeature.Store(), logg)

	go func() {
		logg.Info("Listening", zap.String("port", cfg.Server.Port))
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logg.Fatal("Server stopped", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logg.Info("Shutting down")
	if err := app.Shutdown(); err != nil {
		logg.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	if err := session.Close(context.Background()); err != nil {
		logg.Warn("Failed to tear down layers", zap.Error(err))
	}
	return nil
}

// newApp builds the fiber app with the global middleware chain. The ray id
// is assigned first so request logs and auth failures carry it.
func newApp(cfg *config.Config, logg *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimit(),
	})
	app.Use(rayid.New())
	app.Use(requestLogger(logg))
	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))
	return app
}

func requestLogger(logg *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		if err := c.Next(); err != nil {
			l.Error("Request error", zap.Error(err))
			return err
		}
		return nil
	}
}

// restoreLayers syncs the session with the configured layer file, falling back to
// the persisted catalog when persistence is enabled.
func restoreLayers(ctx context.Context, cfg *config.Config, session *viewer.Session, store *catalog.Store, logg *zap.Logger) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch {
	case cfg.Viewer.CatalogFile != "":
		layers, exaggeration, err := readLayerFile(cfg.Viewer.CatalogFile)
		if err != nil {
			logg.Error("Failed to read layer file", zap.Error(err))
			return
		}
		if err := session.SetExaggeration(exaggeration); err != nil {
			logg.Warn("Ignoring layer file exaggeration", zap.Error(err))
		}
		report, err := session.Sync(ctx, layers)
		logSync(logg, "layer file", report, err)
	case cfg.Viewer.Persist && store != nil:
		layers, err := store.List(ctx)
		if err != nil {
			logg.Error("Failed to read layer catalog", zap.Error(err))
			return
		}
		report, err := session.Sync(ctx, layers)
		logSync(logg, "catalog", report, err)
	}
}

func logSync(logg *zap.Logger, origin string, report viewer.SyncReport, err error) {
	if err != nil {
		logg.Warn("Some layers failed to load", zap.String("origin", origin), zap.Error(err))
	}
	logg.Info("Layers restored",
		zap.String("origin", origin),
		zap.Strings("added", report.Added),
		zap.Int("failed", len(report.Failed)))
}

func init() {
	RootCmd.AddCommand(startCmd)
}
