// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Resolution Endpoints - these keys locate the external services the engine talks to.
const (
	ResolverEndpoint = "resolver.endpoint"
	ProxyEndpoint    = "proxy.endpoint"
)

// Metadata Retrieval - these keys govern the lookup of per-file remote metadata.
const (
	MetadataFetchRemote = "metadata.fetch_remote"
)

// Media Playback - these keys maintain the state and configuration for external video players.
const (
	Player            = "player.default"
	PlayerLoadTimeout = "player.load_timeout"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern general application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
