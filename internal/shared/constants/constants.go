package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultTLSPort is the port probed for certificates unless overridden.
	DefaultTLSPort = 443
	// DefaultNetworkTimeout bounds every connect, handshake, and DNS call.
	DefaultNetworkTimeout = 5 * time.Second
)
