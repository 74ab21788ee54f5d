// Package constants defines shared configuration constants.
package constants

var (
	ConfigFile = "config.yaml"

	DefaultDir = ".clockwork-mcp"

	// ServerName is the MCP server name announced to clients.
	ServerName = "clockwork-mcp"

	// StorageSubdir is where Laravel keeps Clockwork file storage relative to the project root.
	StorageSubdir = "storage/clockwork"

	// IndexFile is the tab-separated index inside a Clockwork storage directory.
	IndexFile = "index"

	// ArtisanFile marks the root of a Laravel project.
	ArtisanFile = "artisan"

	DefaultPHPBinary = "php"

	DefaultSQLTable = "clockwork"

	DefaultRedisPrefix = "clockwork:"

	DefaultSSEAddr = "127.0.0.1:8765"
)
