//go:build !windows

package fetch

import (
	"os"
	"time"
)

// stampTimes sets access and modification time. Unix filesystems offer no
// portable way to set a creation time.
func stampTimes(path string, t time.Time) error {
	return os.Chtimes(path, t, t)
}
