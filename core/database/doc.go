// Package database handles the catalog database connection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly
// configure the connection based on the application's configuration. SQLite is
// the default driver (the catalog is a single-node server with a local file
// database); MySQL is supported for deployments that already run one.
//
// # Connect
//
// The Connect function establishes a connection to the database and verifies
// it with a ping. Connection pool limits are applied for MySQL; SQLite runs
// with a single writer connection to avoid SQLITE_BUSY under concurrent
// imports.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
