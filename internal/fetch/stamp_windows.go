//go:build windows

package fetch

import (
	"time"

	"golang.org/x/sys/windows"
)

// stampTimes sets creation and last-write time; access time is left alone.
func stampTimes(path string, t time.Time) error {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}

	// FILE_WRITE_ATTRIBUTES is required for SetFileTime.
	fd, err := windows.CreateFile(pathPtr,
		windows.FILE_WRITE_ATTRIBUTES, windows.FILE_SHARE_READ, nil,
		windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return err
	}
	defer windows.Close(fd)

	ft := windows.NsecToFiletime(t.UnixNano())
	return windows.SetFileTime(fd, &ft, nil, &ft)
}
