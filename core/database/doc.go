// Package database opens the gorm connection behind the layer catalog.
//
// SQLite is the default so a single binary can persist its layer set to a
// local file; MySQL is used when several instances share one catalog.
// MissingColumns lets the catalog refuse a table whose schema predates the
// current layer record instead of failing on the first write.
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "layers", []string{"id", "payload"})
package database
