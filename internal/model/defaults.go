package model

import "time"

// Shared defaults used by both the CLI and TUI binaries.
const (
	DefaultAPIBase        = "http://localhost:8000"
	DefaultRequestTimeout = 30 * time.Second
	DefaultExportDir      = "."
	DefaultSkin           = "default"
	DefaultListenAddr     = "127.0.0.1:3100"
	DefaultWorkspaceRows  = 1000
)
