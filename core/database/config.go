package database

// Config selects and addresses the catalog database.
type Config struct {
	// Driver is "sqlite" or "mysql".
	Driver   string `mapstructure:"driver" default:"sqlite"`
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"3306"`
	User     string `mapstructure:"user" default:"root"`
	Password string `mapstructure:"password" default:""`
	// Name is the schema name, or the file path for sqlite.
	Name           string `mapstructure:"name" default:"layers.db"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
}
