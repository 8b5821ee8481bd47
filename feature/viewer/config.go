package viewer

// Config holds the viewer session configuration.
type Config struct {
	// CatalogFile is an optional layer file synced into the session at startup.
	CatalogFile string `mapstructure:"catalog_file"`
	// Exaggeration is the initial vertical exaggeration.
	Exaggeration float64 `mapstructure:"exaggeration" default:"1"`
	// Persist stores every accepted layer set in the database catalog.
	Persist bool `mapstructure:"persist" default:"false"`
}
