package fetch

import (
	"path/filepath"
	"strings"
)

// NeedsTransfer decides from sizes alone whether a remote object must be
// fetched. Zero-length objects are placeholders and never fetched. Equal
// sizes are taken to mean equal content; no checksum is compared.
func NeedsTransfer(remoteSize int64, localExists bool, localSize int64) bool {
	if remoteSize == 0 {
		return false
	}
	if !localExists {
		return true
	}
	return remoteSize != localSize
}

// LocalName flattens an object key into a single file name under destDir.
// Keys that differ only in where their separators sit map to the same file.
func LocalName(destDir, key string) string {
	return filepath.Join(destDir, strings.ReplaceAll(key, "/", "_"))
}
