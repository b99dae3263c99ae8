package server

import (
	"path/filepath"
	"strings"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// WorkDir is the staging directory where uploaded files are assembled
	// before they are imported or stored.
	WorkDir string `mapstructure:"work_dir" default:"./data/uploads"`
	// ServerFilesDir is where game server files from imported packages are placed.
	ServerFilesDir string `mapstructure:"server_files_dir" default:"./data/servers"`
}

// StagedPath resolves an uploaded object key to its on-disk staging path.
// Object keys are opaque names; anything that looks like a path is rejected
// by returning an empty string.
func (c Config) StagedPath(objectKey string) string {
	if objectKey == "" || strings.ContainsAny(objectKey, `/\`) || objectKey == "." || objectKey == ".." {
		return ""
	}
	return filepath.Join(c.WorkDir, objectKey)
}
