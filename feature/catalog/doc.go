// Package catalog persists the active layer set in a SQL database so a restarted
// server comes back with the same layers in the same order.
//
// Every layer is one row of the "layers" table. The row keeps the layer id, its
// type, its position in the stack (0 is the top) and the full layer as JSON. The
// table is created with gorm AutoMigrate and can be checked against the expected
// columns with Verify. Works with the sqlite and MySQL drivers of core/database.
package catalog
