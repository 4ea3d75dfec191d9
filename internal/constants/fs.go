package constants

import "os"

const (
	// DefaultFilePermissions sets the permissions for session snapshots and results: (rw-------).
	// Snapshots hold live session cookies, so only the owner may read them.
	DefaultFilePermissions os.FileMode = 0o600

	// DefaultArtifactPermissions sets the permissions for screenshots and page dumps: (rw-r--r--).
	DefaultArtifactPermissions os.FileMode = 0o644

	// DefaultFolderPermissions sets the permissions for cache and diagnostics folders: (rwxr-xr-x).
	DefaultFolderPermissions os.FileMode = 0o755
)

// File extension constants.
const (
	ExtensionJSON = ".json"
	ExtensionPNG  = ".png"
	ExtensionHTML = ".html"
	ExtensionTemp = ".tmp"
)
