// Package server holds the HTTP server configuration and constants.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structures and valid values for server settings,
// such as the staging directory layout for uploaded packages and archives.
//
// # Configuration
//
// The Config struct defines the HTTP port, API key, and the staging directory
// where chunk-uploaded files are assembled before import.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by the sync and archive features to resolve staged object keys to paths.
package server
